package dictionary

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
)

// FileFormat represents the supported dictionary file formats
type FileFormat int

const (
	FormatUnknown FileFormat = iota
	FormatChunk              // Chunked binary format (dict_0001.bin)
	FormatText               // Plain text, one "word [frequency]" per line
)

func (f FileFormat) String() string {
	switch f {
	case FormatChunk:
		return "chunk"
	case FormatText:
		return "text"
	default:
		return "unknown"
	}
}

// maxRank is the rank to frequency pivot used by the chunk format:
// rank 1 becomes frequency 65535.
const maxRank = 65536

// maxChunkEntries guards against corrupt headers.
const maxChunkEntries = 1000000

// DetectFileFormat picks a format from the file name.
func DetectFileFormat(filename string) FileFormat {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".bin":
		return FormatChunk
	case ".txt":
		return FormatText
	default:
		return FormatUnknown
	}
}

// ReadText adds every "word [frequency]" line of r to d. Blank lines and
// lines starting with '#' are skipped and a missing frequency counts as 1.
// Reading stops after maxWords words when maxWords > 0.
func ReadText(r io.Reader, d *Dictionary, maxWords int) (int, error) {
	scanner := bufio.NewScanner(r)
	count := 0
	line := 0
	for scanner.Scan() {
		if maxWords > 0 && count >= maxWords {
			break
		}
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		fields := strings.Fields(text)
		freq := 1
		if len(fields) > 1 {
			n, err := strconv.Atoi(fields[1])
			if err != nil {
				return count, fmt.Errorf("line %d: invalid frequency %q: %w", line, fields[1], err)
			}
			freq = n
		}
		d.AddWord(fields[0], freq)
		count++
	}
	if err := scanner.Err(); err != nil {
		return count, fmt.Errorf("failed to read text dictionary: %w", err)
	}
	return count, nil
}

// ReadChunk adds the entries of a binary chunk to d, stopping after
// maxWords entries when maxWords > 0.
//
// Layout, little endian: int32 entry count, then per entry a uint16 word
// length, the word bytes and a uint16 rank (1 is the most frequent).
func ReadChunk(r io.Reader, d *Dictionary, maxWords int) (int, error) {
	reader := bufio.NewReader(r)

	var totalEntries int32
	if err := binary.Read(reader, binary.LittleEndian, &totalEntries); err != nil {
		return 0, fmt.Errorf("failed to read chunk header: %w", err)
	}
	if totalEntries < 0 || totalEntries > maxChunkEntries {
		return 0, fmt.Errorf("invalid chunk word count: %d", totalEntries)
	}

	count := 0
	for count < int(totalEntries) {
		if maxWords > 0 && count >= maxWords {
			break
		}

		var wordLen uint16
		if err := binary.Read(reader, binary.LittleEndian, &wordLen); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return count, fmt.Errorf("failed to read word length: %w", err)
		}

		wordBytes := make([]byte, wordLen)
		if _, err := io.ReadFull(reader, wordBytes); err != nil {
			return count, fmt.Errorf("failed to read word: %w", err)
		}

		var rank uint16
		if err := binary.Read(reader, binary.LittleEndian, &rank); err != nil {
			return count, fmt.Errorf("failed to read rank: %w", err)
		}

		d.AddWord(string(wordBytes), maxRank-int(rank))
		count++
	}
	return count, nil
}

// WriteChunk encodes words in the chunk layout, ranking them by position.
func WriteChunk(w io.Writer, words []string) error {
	if len(words) >= maxRank {
		return fmt.Errorf("chunk holds at most %d words, got %d", maxRank-1, len(words))
	}

	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, int32(len(words))); err != nil {
		return err
	}
	for i, word := range words {
		if len(word) > 0xFFFF {
			return fmt.Errorf("word %d is too long (%d bytes)", i, len(word))
		}
		if err := binary.Write(bw, binary.LittleEndian, uint16(len(word))); err != nil {
			return err
		}
		if _, err := bw.WriteString(word); err != nil {
			return err
		}
		if err := binary.Write(bw, binary.LittleEndian, uint16(i+1)); err != nil {
			return err
		}
	}
	return bw.Flush()
}
