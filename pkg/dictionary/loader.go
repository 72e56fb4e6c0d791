package dictionary

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

// ChunkInfo contains metadata about a chunk file
type ChunkInfo struct {
	ChunkID  int
	Filename string
}

// AvailableChunks scans dirPath for dict_NNNN.bin files, ordered by ID.
func AvailableChunks(dirPath string) ([]ChunkInfo, error) {
	files, err := filepath.Glob(filepath.Join(dirPath, "dict_*.bin"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan for chunk files: %w", err)
	}

	var chunks []ChunkInfo
	for _, file := range files {
		idStr := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(file), "dict_"), ".bin")
		chunkID, err := strconv.Atoi(idStr)
		if err != nil {
			log.Debugf("Skipping chunk with malformed name: %s", file)
			continue
		}
		chunks = append(chunks, ChunkInfo{ChunkID: chunkID, Filename: file})
	}

	sort.Slice(chunks, func(i, j int) bool {
		return chunks[i].ChunkID < chunks[j].ChunkID
	})
	return chunks, nil
}

// LoadFile adds one dictionary file to d, reading at most maxWords words
// when maxWords > 0.
func LoadFile(path string, d *Dictionary, maxWords int) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open dictionary %s: %w", path, err)
	}
	defer file.Close()

	switch DetectFileFormat(path) {
	case FormatChunk:
		return ReadChunk(file, d, maxWords)
	case FormatText:
		return ReadText(file, d, maxWords)
	default:
		return 0, fmt.Errorf("unsupported dictionary format: %s", path)
	}
}

// Load builds a dictionary from path, which is either a single file or a
// directory of chunk files. Chunks are read in ID order until maxWords words
// are loaded (0 loads everything).
func Load(path string, maxWords, minFrequency int) (*Dictionary, error) {
	d := New(minFrequency)

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat dictionary path: %w", err)
	}
	if !info.IsDir() {
		n, err := LoadFile(path, d, maxWords)
		if err != nil {
			return nil, err
		}
		log.Debugf("Loaded %d words from %s", n, path)
		return d, nil
	}

	chunks, err := AvailableChunks(path)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no chunk files found in %s", path)
	}
	log.Debugf("Found %d chunk files", len(chunks))

	loaded := 0
	for _, chunk := range chunks {
		remaining := 0
		if maxWords > 0 {
			remaining = maxWords - loaded
			if remaining <= 0 {
				break
			}
		}
		n, err := LoadFile(chunk.Filename, d, remaining)
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", chunk.ChunkID, err)
		}
		loaded += n
		log.Debugf("Chunk %d loaded: %d words", chunk.ChunkID, n)
	}
	return d, nil
}
