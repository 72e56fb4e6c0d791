package dictionary

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bastiangx/typr-suggest/internal/utils"
	"github.com/bastiangx/typr-suggest/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

func sampleDictionary() *Dictionary {
	d := New(10)
	d.AddWord("hello", 500)
	d.AddWord("help", 900)
	d.AddWord("helmet", 40)
	d.AddWord("hel", 1000)
	d.AddWord("helix", 5)
	d.AddWord("world", 800)
	return d
}

func TestComplete(t *testing.T) {
	d := sampleDictionary()

	tests := []struct {
		name   string
		prefix string
		limit  int
		want   []string
	}{
		{"ranked by frequency", "hel", 0, []string{"help", "hello", "helmet"}},
		{"limit applies", "hel", 2, []string{"help", "hello"}},
		{"exact match excluded", "help", 0, nil},
		{"capitalization carried over", "He", 0, []string{"Hel", "Help", "Hello", "Helmet"}},
		{"no match", "xyz", 0, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := d.Words(context.Background(), tc.prefix, tc.limit)
			require.NoError(t, err)
			if tc.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCompleteSkipsLowFrequency(t *testing.T) {
	got, err := sampleDictionary().Words(context.Background(), "heli", 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCompleteTiesAreAlphabetical(t *testing.T) {
	d := New(0)
	d.AddWord("cart", 5)
	d.AddWord("care", 5)
	d.AddWord("card", 5)

	got, err := d.Words(context.Background(), "ca", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"card", "care", "cart"}, got)
}

func TestCompleteHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sampleDictionary().Complete(ctx, "he", 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCompleteFilter(t *testing.T) {
	d := New(0)
	d.AddWord("2024", 5)
	d.AddWord("20245", 5)
	d.AddWord("aaaa", 5)
	d.AddWord("abc", 5)

	got, err := d.Words(context.Background(), "202", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024", "20245"}, got)

	d.SetFilter(utils.NewTokenFilter(""))
	for _, token := range []string{"202", "aaa", "a#"} {
		got, err = d.Words(context.Background(), token, 0)
		require.NoError(t, err)
		assert.Empty(t, got, token)
	}

	got, err = d.Words(context.Background(), "ab", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"abc"}, got)

	d.SetFilter(nil)
	got, err = d.Words(context.Background(), "aaa", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"aaaa"}, got)
}

func TestCompleteFilterAllowsSigil(t *testing.T) {
	d := New(0)
	d.AddWord("@alice", 5)
	d.AddWord("@aaaa", 5)
	d.SetFilter(utils.NewTokenFilter("@"))

	got, err := d.Words(context.Background(), "@al", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"@alice"}, got)

	got, err = d.Words(context.Background(), "@aaa", 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCompleteKeepsNonASCIICapitals(t *testing.T) {
	d := New(0)
	d.AddWord("école", 10)
	d.AddWord("écho", 5)

	got, err := d.Words(context.Background(), "Éc", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"École", "Écho"}, got)

	got, err = d.Words(context.Background(), "ÉC", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"ÉCole", "ÉCho"}, got)
}

func TestAddWordUpdatesFrequency(t *testing.T) {
	d := New(0)
	d.AddWord("Alpha", 1)
	d.AddWord("alpha", 7)
	d.AddWord("  ", 3)

	assert.Equal(t, 1, d.Len())
	got, err := d.Complete(context.Background(), "al", 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, Suggestion{Word: "alpha", Frequency: 7}, got[0])
	assert.Equal(t, 7, d.Stats()["maxFrequency"])
}

func TestApplyCapitalization(t *testing.T) {
	assert.Equal(t, "HeLlo", ApplyCapitalization("hello", []bool{true, false, true}))
	assert.Equal(t, "hello", ApplyCapitalization("hello", nil))
	assert.Equal(t, "1bc", ApplyCapitalization("1bc", []bool{true}))
	assert.Equal(t, "École", ApplyCapitalization("école", []bool{true}))
	assert.Equal(t, "ŁÓdź", ApplyCapitalization("łódź", []bool{true, true}))
	assert.Equal(t, "Straße", ApplyCapitalization("straße", []bool{true}))
}

func TestReadText(t *testing.T) {
	d := New(0)
	n, err := ReadText(strings.NewReader("# words\nhello 50\n\nhelp\n  world 20  \n"), d, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	got, err := d.Complete(context.Background(), "hel", 0)
	require.NoError(t, err)
	assert.Equal(t, []Suggestion{{"hello", 50}, {"help", 1}}, got)
}

func TestReadTextLimitAndErrors(t *testing.T) {
	n, err := ReadText(strings.NewReader("a 1\nb 2\nc 3\n"), New(0), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = ReadText(strings.NewReader("a one\n"), New(0), 0)
	assert.ErrorContains(t, err, "line 1")
}

func TestChunkRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteChunk(&buf, []string{"the", "then", "there"}))

	d := New(0)
	n, err := ReadChunk(bytes.NewReader(buf.Bytes()), d, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	got, err := d.Complete(context.Background(), "th", 0)
	require.NoError(t, err)
	assert.Equal(t, []Suggestion{{"the", 65535}, {"then", 65534}, {"there", 65533}}, got)
}

func TestReadChunkRejectsBadHeader(t *testing.T) {
	_, err := ReadChunk(bytes.NewReader([]byte{0xff, 0xff, 0xff, 0xff}), New(0), 0)
	assert.ErrorContains(t, err, "invalid chunk word count")

	_, err = ReadChunk(bytes.NewReader(nil), New(0), 0)
	assert.ErrorContains(t, err, "chunk header")
}

func TestDetectFileFormat(t *testing.T) {
	assert.Equal(t, FormatChunk, DetectFileFormat("dict_0001.bin"))
	assert.Equal(t, FormatText, DetectFileFormat("words.TXT"))
	assert.Equal(t, FormatUnknown, DetectFileFormat("words.csv"))
	assert.Equal(t, "chunk", FormatChunk.String())
}

func writeChunkFile(t *testing.T, dir, name string, words []string) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, WriteChunk(&buf, words))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0644))
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	writeChunkFile(t, dir, "dict_0002.bin", []string{"beta", "bet"})
	writeChunkFile(t, dir, "dict_0001.bin", []string{"alpha", "also", "alps"})
	writeChunkFile(t, dir, "dict_bad.bin", []string{"ignored"})

	chunks, err := AvailableChunks(dir)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, 1, chunks[0].ChunkID)

	d, err := Load(dir, 4, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, d.Len())

	all, err := Load(dir, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, all.Len())
}

func TestLoadSingleFileAndErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "words.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello 3\nhelp 2\n"), 0644))

	d, err := Load(path, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, d.Len())

	_, err = Load(filepath.Join(dir, "missing"), 0, 0)
	assert.Error(t, err)

	_, err = Load(t.TempDir(), 0, 0)
	assert.ErrorContains(t, err, "no chunk files")
}

func TestDictionaryAsSuggestLoader(t *testing.T) {
	res := sampleDictionary().Loader(2, false).Load(context.Background(), "hel")
	require.False(t, res.IsPending())
	assert.Equal(t, []string{"help", "hello"}, res.Outcome().Candidates)

	res = sampleDictionary().Loader(1, true).Load(context.Background(), "wor")
	require.True(t, res.IsPending())
	out, ok := res.Wait(context.Background())
	require.True(t, ok)
	assert.Equal(t, []string{"world"}, out.Candidates)
}

func TestControllerWithDictionary(t *testing.T) {
	c, err := suggest.New(sampleDictionary().Loader(5, false))
	require.NoError(t, err)
	c.Init(nopHost{})

	state, ok := c.HandleKey("say He", "", "", suggest.KeyEvent{Key: "l"})
	require.True(t, ok)
	assert.Equal(t, suggest.State{Value: "say Help", SelectionStart: 7, SelectionEnd: 8}, state)
}

type nopHost struct{}

func (nopHost) PushState(suggest.State) {}
func (nopHost) Schedule(fn func())      { fn() }
