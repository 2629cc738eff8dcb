package cs

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/Mofl2328/languagetool"
	"github.com/Mofl2328/languagetool/internal/testutil"
)

// fakeDict records every lookup it answers.
type fakeDict struct {
	mu      sync.Mutex
	entries map[string][]string
	calls   []string
}

func (d *fakeDict) Lookup(word string) []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, word)
	return d.entries[word]
}

func newFakeTagger(entries map[string][]string) (*Tagger, *fakeDict) {
	d := &fakeDict{entries: entries}
	t := New("", WithDictionary(func() (Dictionary, error) { return d, nil }))
	return t, d
}

func newFileTagger(t *testing.T) *Tagger {
	t.Helper()
	tg := New(testutil.ResourceDir(t))
	t.Cleanup(func() { tg.Close() })
	return tg
}

func readings(t *testing.T, r languagetool.AnalyzedTokenReadings, want ...languagetool.AnalyzedToken) {
	t.Helper()
	if len(r.Readings) != len(want) {
		t.Fatalf("%q: got %d readings %+v, want %d %+v", r.Token, len(r.Readings), r.Readings, len(want), want)
	}
	for i := range want {
		if r.Readings[i] != want[i] {
			t.Errorf("%q reading %d = %+v, want %+v", r.Token, i, r.Readings[i], want[i])
		}
	}
}

func TestTagLowercaseFallback(t *testing.T) {
	tg := newFileTagger(t)
	got, err := tg.Tag([]string{"Praha"})
	if err != nil {
		t.Fatalf("Tag: %v", err)
	}
	readings(t, got[0], languagetool.NewAnalyzedToken("Praha", "NNFS1", "praha"))
}

func TestTagSplitsJoinedTags(t *testing.T) {
	tg := newFileTagger(t)
	got, err := tg.Tag([]string{"knihu"})
	if err != nil {
		t.Fatalf("Tag: %v", err)
	}
	readings(t, got[0],
		languagetool.NewAnalyzedToken("knihu", "NNFS1", "kniha"),
		languagetool.NewAnalyzedToken("knihu", "NNFS4", "kniha"),
	)
}

func TestTagUnionsBothCasings(t *testing.T) {
	tg := newFileTagger(t)
	got, err := tg.Tag([]string{"Mír"})
	if err != nil {
		t.Fatalf("Tag: %v", err)
	}
	readings(t, got[0],
		languagetool.NewAnalyzedToken("Mír", "NNIS1", "Mír"),
		languagetool.NewAnalyzedToken("Mír", "NNIS1", "mír"),
		languagetool.NewAnalyzedToken("Mír", "NNIS4", "mír"),
	)
}

func TestTagSeveralLemmas(t *testing.T) {
	tg := newFileTagger(t)
	got, err := tg.Tag([]string{"je"})
	if err != nil {
		t.Fatalf("Tag: %v", err)
	}
	readings(t, got[0],
		languagetool.NewAnalyzedToken("je", "VB-S---3P", "být"),
		languagetool.NewAnalyzedToken("je", "PPXP4", "on"),
	)
}

func TestTagUnknownWordsCarryOffsets(t *testing.T) {
	tg := newFileTagger(t)
	tokens := []string{"Žádný", " ", "psa", " ", "qwerty", "."}
	got, err := tg.Tag(tokens)
	if err != nil {
		t.Fatalf("Tag: %v", err)
	}
	if len(got) != len(tokens) {
		t.Fatalf("got %d bundles for %d tokens", len(got), len(tokens))
	}
	for i, r := range got {
		if r.Token != tokens[i] {
			t.Errorf("bundle %d token = %q, want %q", i, r.Token, tokens[i])
		}
		if len(r.Readings) == 0 {
			t.Errorf("bundle %d is empty", i)
		}
	}

	readings(t, got[0], languagetool.NewUntaggedToken("Žádný", 0))
	readings(t, got[1], languagetool.NewUntaggedToken(" ", 5))
	readings(t, got[2],
		languagetool.NewAnalyzedToken("psa", "NNMS2", "pes"),
		languagetool.NewAnalyzedToken("psa", "NNMS4", "pes"),
	)
	readings(t, got[4], languagetool.NewUntaggedToken("qwerty", 10))
	readings(t, got[5], languagetool.NewUntaggedToken(".", 16))

	if got[4].StartPos != 10 {
		t.Errorf("bundle StartPos = %d, want 10", got[4].StartPos)
	}
}

func TestTagLowercaseTokenLooksUpOnce(t *testing.T) {
	tg, d := newFakeTagger(map[string][]string{
		"kniha": {"kniha", "NNFS1"},
	})
	got, err := tg.Tag([]string{"kniha", "123", "."})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"kniha", "123", "."}
	if len(d.calls) != len(want) {
		t.Fatalf("lookups = %q, want %q", d.calls, want)
	}
	for i := range want {
		if d.calls[i] != want[i] {
			t.Errorf("lookup %d = %q, want %q", i, d.calls[i], want[i])
		}
	}
	readings(t, got[0], languagetool.NewAnalyzedToken("kniha", "NNFS1", "kniha"))
}

func TestTagMixedCaseLooksUpBoth(t *testing.T) {
	tg, d := newFakeTagger(nil)
	if _, err := tg.Tag([]string{"KNIHA"}); err != nil {
		t.Fatal(err)
	}
	if len(d.calls) != 2 || d.calls[0] != "KNIHA" || d.calls[1] != "kniha" {
		t.Errorf("lookups = %q, want [KNIHA kniha]", d.calls)
	}
}

func TestTagNoDeduplication(t *testing.T) {
	tg, _ := newFakeTagger(map[string][]string{
		"Pes": {"pes", "NNMS1"},
		"pes": {"pes", "NNMS1"},
	})
	got, err := tg.Tag([]string{"Pes"})
	if err != nil {
		t.Fatal(err)
	}
	readings(t, got[0],
		languagetool.NewAnalyzedToken("Pes", "NNMS1", "pes"),
		languagetool.NewAnalyzedToken("Pes", "NNMS1", "pes"),
	)
}

func TestTagMalformedResults(t *testing.T) {
	tg, _ := newFakeTagger(map[string][]string{
		"odd":   {"lemma", "T1", "dangling"},
		"empty": {"lemma", "+"},
		"gaps":  {"lemma", "+A++B+"},
	})
	got, err := tg.Tag([]string{"odd", "empty", "gaps"})
	if err != nil {
		t.Fatal(err)
	}
	readings(t, got[0], languagetool.NewAnalyzedToken("odd", "T1", "lemma"))
	readings(t, got[1], languagetool.NewUntaggedToken("empty", 3))
	readings(t, got[2],
		languagetool.NewAnalyzedToken("gaps", "A", "lemma"),
		languagetool.NewAnalyzedToken("gaps", "B", "lemma"),
	)
}

func TestTagEmptySentence(t *testing.T) {
	tg, _ := newFakeTagger(nil)
	got, err := tg.Tag(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("Tag(nil) = %+v, want empty", got)
	}
}

func TestCreateNullToken(t *testing.T) {
	tg := New(filepath.Join(t.TempDir(), "missing"))
	r := tg.CreateNullToken("xyz", 5)
	readings(t, r, languagetool.NewUntaggedToken("xyz", 5))
	if r.StartPos != 5 || r.IsTagged() {
		t.Errorf("CreateNullToken = %+v", r)
	}
}

func TestMissingResourceIsFatal(t *testing.T) {
	tg := New(filepath.Join(t.TempDir(), "missing"))

	_, err := tg.Tag([]string{"kniha"})
	if !errors.Is(err, languagetool.ErrResource) {
		t.Fatalf("Tag error = %v, want ErrResource", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Tag error = %v, want ErrNotExist underneath", err)
	}
	var rerr *languagetool.ResourceError
	if !errors.As(err, &rerr) || filepath.Base(rerr.Path) != "czech.dict" {
		t.Errorf("ResourceError = %+v", rerr)
	}
}

func TestCorruptResourceIsFatal(t *testing.T) {
	root := t.TempDir()
	testutil.WriteDictionary(t, filepath.Join(root, "cs"), "czech.dict", testutil.CzechEntries())
	// Overwrite with garbage of the same name.
	path := filepath.Join(root, ResourceFile)
	if err := os.WriteFile(path, []byte("not a dictionary, just some bytes padding it out to length"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := New(root).Tag([]string{"kniha"})
	if !errors.Is(err, languagetool.ErrResource) {
		t.Fatalf("Tag error = %v, want ErrResource", err)
	}
}

func TestFailedInitIsNotRetried(t *testing.T) {
	var opens atomic.Int32
	boom := errors.New("boom")
	tg := New("", WithDictionary(func() (Dictionary, error) {
		opens.Add(1)
		return nil, boom
	}))

	for i := 0; i < 3; i++ {
		if _, err := tg.Tag([]string{"x"}); !errors.Is(err, boom) {
			t.Fatalf("Tag error = %v, want boom", err)
		}
	}
	if err := tg.Load(); !errors.Is(err, boom) {
		t.Errorf("Load error = %v, want boom", err)
	}
	if n := opens.Load(); n != 1 {
		t.Errorf("open called %d times, want 1", n)
	}
}

func TestConcurrentFirstUseOpensOnce(t *testing.T) {
	var opens atomic.Int32
	d := &fakeDict{entries: map[string][]string{"pes": {"pes", "NNMS1"}}}
	tg := New("", WithDictionary(func() (Dictionary, error) {
		opens.Add(1)
		return d, nil
	}))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := tg.Tag([]string{"pes"})
			if err != nil {
				t.Error(err)
				return
			}
			if !got[0].HasPOSTag("NNMS1") {
				t.Errorf("readings = %+v", got[0])
			}
		}()
	}
	wg.Wait()
	if n := opens.Load(); n != 1 {
		t.Errorf("open called %d times, want 1", n)
	}
}

func TestCompressedResource(t *testing.T) {
	tg := New(testutil.CompressedResourceDir(t))
	defer tg.Close()
	got, err := tg.Tag([]string{"žluťoučký"})
	if err != nil {
		t.Fatalf("Tag: %v", err)
	}
	readings(t, got[0], languagetool.NewAnalyzedToken("žluťoučký", "AAMS1----1A", "žluťoučký"))
}

func TestResourceDirFromEnvironment(t *testing.T) {
	root := testutil.ResourceDir(t)
	t.Setenv(EnvResourceDir, root)
	tg := New("")
	defer tg.Close()
	if tg.ResourceDir() != root {
		t.Errorf("ResourceDir() = %q, want %q", tg.ResourceDir(), root)
	}
	if err := tg.Load(); err != nil {
		t.Errorf("Load: %v", err)
	}
}

func TestLookup(t *testing.T) {
	tg := newFileTagger(t)
	got, err := tg.Lookup("nejkrásnější")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != (Entry{Lemma: "krásný", Tag: "AAFS1----3A"}) {
		t.Errorf("Lookup = %+v", got)
	}
	if got, _ := tg.Lookup("Praha"); len(got) != 0 {
		t.Errorf("Lookup(Praha) = %+v, want none", got)
	}
}

func TestTagText(t *testing.T) {
	tg := newFileTagger(t)
	got, err := tg.TagText("Mír je v Praha.")
	if err != nil {
		t.Fatal(err)
	}
	var words []languagetool.AnalyzedTokenReadings
	for _, r := range got {
		if !r.IsWhitespace() {
			words = append(words, r)
		}
	}
	if len(words) != 5 {
		t.Fatalf("got %d non-space tokens, want 5", len(words))
	}
	if !words[2].HasLemma("v") || !words[3].HasLemma("praha") || words[4].IsTagged() {
		t.Errorf("unexpected readings: %+v", words)
	}
	if words[4].StartPos != 14 {
		t.Errorf("'.' StartPos = %d, want 14", words[4].StartPos)
	}
}

func TestClose(t *testing.T) {
	tg := newFileTagger(t)
	if err := tg.Load(); err != nil {
		t.Fatal(err)
	}
	if err := tg.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := tg.Tag([]string{"pes"}); !errors.Is(err, ErrClosed) {
		t.Errorf("Tag after Close = %v, want ErrClosed", err)
	}

	unused := New(t.TempDir())
	if err := unused.Close(); err != nil {
		t.Errorf("Close before use: %v", err)
	}
	if err := unused.Load(); !errors.Is(err, ErrClosed) {
		t.Errorf("Load after Close = %v, want ErrClosed", err)
	}
}
