package subtitles

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gofrs/flock"

	"autosub/internal/config"
	"autosub/internal/gapfill"
	"autosub/internal/logging"
	"autosub/internal/services"
	"autosub/internal/srt"
	"autosub/internal/testsupport"
)

// translator answers every prompt item with "译<id>".
type translator struct {
	mu    sync.Mutex
	calls int
}

func (f *translator) Generate(_ context.Context, tasks []gapfill.Task) []gapfill.Outcome {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	out := make([]gapfill.Outcome, 0, len(tasks))
	for _, task := range tasks {
		var b strings.Builder
		for _, line := range strings.Split(task.Prompt, "\n") {
			var id int
			if _, err := fmt.Sscanf(line, "Item %d:", &id); err == nil {
				fmt.Fprintf(&b, "Item %d: 译%d\n", id, id)
			}
		}
		out = append(out, gapfill.Outcome{ID: task.ID, Text: b.String(), OK: true})
	}
	return out
}

func newService(t *testing.T, cfg *config.Config, opts ...ServiceOption) *Service {
	t.Helper()
	svc := NewService(cfg, logging.NewNop(), opts...)
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func lines(track srt.Track) []string {
	out := make([]string, len(track))
	for i, b := range track {
		out[i] = strings.Join(b.Lines, "|")
	}
	return out
}

const transcriptJSON = `{"language":"en","segments":[
 {"start":0,"end":1.2,"text":"Hello there.","words":[
  {"word":"Hello","start":0,"end":0.5},{"word":"there.","start":0.6,"end":1.2}]},
 {"start":1.4,"end":2.6,"text":"How are you?","words":[
  {"word":"How","start":1.4,"end":1.7},{"word":"are","start":1.8,"end":2.0},
  {"word":"you?","start":2.1,"end":2.6},{"word":"um"}]}
]}`

func TestGenerateWritesSubtitles(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	path := filepath.Join(testsupport.BaseDir(cfg), "talk.json")
	testsupport.WriteFile(t, path, transcriptJSON)

	result, err := newService(t, cfg).Generate(context.Background(), GenerateRequest{TranscriptPath: path})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.SubtitlePath != filepath.Join(cfg.Paths.OutputDir, "talk.srt") {
		t.Fatalf("unexpected path %s", result.SubtitlePath)
	}
	if result.ProfileSource != "detected" || result.Profile == "" {
		t.Fatalf("expected detected profile, got %+v", result)
	}
	if result.Words != 5 || result.DroppedWords != 1 {
		t.Fatalf("words=%d dropped=%d", result.Words, result.DroppedWords)
	}
	track := testsupport.ReadTrack(t, result.SubtitlePath)
	if len(track) != result.Blocks || len(track) == 0 {
		t.Fatalf("blocks=%d written=%d", result.Blocks, len(track))
	}
	if !strings.HasPrefix(track[0].Text(), "Hello there.") {
		t.Fatalf("unexpected first block %q", track[0].Text())
	}
}

func TestGenerateProfileSelection(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithProfile(config.ProfileFormal))
	path := filepath.Join(testsupport.BaseDir(cfg), "talk.json")
	testsupport.WriteFile(t, path, transcriptJSON)
	svc := newService(t, cfg)

	result, err := svc.Generate(context.Background(), GenerateRequest{TranscriptPath: path, BaseName: "out"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.Profile != "formal" || result.ProfileSource != "configured" {
		t.Fatalf("unexpected profile %+v", result)
	}
	if filepath.Base(result.SubtitlePath) != "out.srt" {
		t.Fatalf("base name ignored: %s", result.SubtitlePath)
	}

	_, err = svc.Generate(context.Background(), GenerateRequest{TranscriptPath: path, Profile: "shouty"})
	if !errors.Is(err, ErrInvalidRequest) || services.ExitCode(err) != 2 {
		t.Fatalf("expected invalid request, got %v", err)
	}
}

func TestGenerateMissingTranscript(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	_, err := newService(t, cfg).Generate(context.Background(), GenerateRequest{TranscriptPath: filepath.Join(t.TempDir(), "nope.json")})
	if !errors.Is(err, ErrTranscriptNotFound) || !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSplitBilingualInput(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := cfg.Paths.OutputDir
	input := filepath.Join(dir, "show.bi.srt")
	testsupport.WriteTrack(t, input, testsupport.Track("你好|Hello", "再见|Bye", "Third"))

	result, err := newService(t, cfg).Split(context.Background(), SplitRequest{InputPath: input, ChunkSize: 2})
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if !result.Bilingual || result.Blocks != 3 {
		t.Fatalf("unexpected result %+v", result)
	}
	source := testsupport.ReadTrack(t, result.SourcePath)
	if got := strings.Join(lines(source), ","); got != "Hello,Bye,Third" {
		t.Fatalf("source track %q", got)
	}
	if len(result.Chunks) != 2 || filepath.Base(result.Chunks[0]) != "chunk_000.srt" || filepath.Base(result.Chunks[1]) != "chunk_001.srt" {
		t.Fatalf("unexpected chunks %v", result.Chunks)
	}
	last := testsupport.ReadTrack(t, result.Chunks[1])
	if len(last) != 1 || last[0].Start != 4 || last[0].Lines[0] != "Third" {
		t.Fatalf("chunk should keep original timing: %+v", last)
	}
}

func TestSplitCopiesMonolingualInput(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	input := filepath.Join(testsupport.BaseDir(cfg), "show.srt")
	testsupport.WriteTrack(t, input, testsupport.Track("One", "Two"))

	result, err := newService(t, cfg).Split(context.Background(), SplitRequest{InputPath: input, OutputDir: cfg.Paths.OutputDir})
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if result.Bilingual || len(result.Chunks) != 1 {
		t.Fatalf("unexpected result %+v", result)
	}
	want, _ := os.ReadFile(input)
	got, _ := os.ReadFile(result.SourcePath)
	if string(want) != string(got) {
		t.Fatal("monolingual input should be copied unchanged")
	}
}

func TestMergeFromChunksFillsAndSyncs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := cfg.Paths.OutputDir
	source := filepath.Join(dir, "show.en.srt")
	testsupport.WriteTrack(t, source, testsupport.Track("Hello", "Lost line", "Goodbye"))
	chunks := filepath.Join(dir, "chunks")
	testsupport.WriteTrack(t, filepath.Join(chunks, "chunk_000.cn.srt"), srt.Track{{Start: 0, End: 2, Lines: []string{"你好"}}})
	testsupport.WriteTrack(t, filepath.Join(chunks, "chunk_001.cn.srt"), srt.Track{{Start: 4, End: 6, Lines: []string{"再见"}}})
	testsupport.WriteTrack(t, filepath.Join(chunks, "chunk_000.srt"), testsupport.Track("Hello"))

	gen := &translator{}
	result, err := newService(t, cfg, WithGenerator(gen)).Merge(context.Background(), MergeRequest{SourcePath: source})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if result.TranslationSource != TranslationFromChunks || result.Diagnostics.Untranslated != 1 {
		t.Fatalf("unexpected result %+v", result)
	}
	if result.Fill.Patched != 1 || !result.Synced || gen.calls != 1 {
		t.Fatalf("fill not applied: %+v calls=%d", result.Fill, gen.calls)
	}

	bi := testsupport.ReadTrack(t, filepath.Join(dir, "show.bi.srt"))
	if got := strings.Join(lines(bi), ","); got != "你好|Hello,译1|Lost line,再见|Goodbye" {
		t.Fatalf("bilingual track %q", got)
	}
	combined := testsupport.ReadTrack(t, filepath.Join(dir, "show.zh.srt"))
	if got := strings.Join(lines(combined), ","); got != "你好,译1,再见" {
		t.Fatalf("combined track %q", got)
	}
}

func TestMergeSyncsFilledLinesToExplicitTranslation(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := cfg.Paths.OutputDir
	source := filepath.Join(dir, "show.en.srt")
	testsupport.WriteTrack(t, source, testsupport.Track("Hello", "Lost line", "Goodbye"))
	translated := filepath.Join(t.TempDir(), "reviewed.srt")
	testsupport.WriteTrack(t, translated, srt.Track{
		{Start: 0, End: 2, Lines: []string{"你好"}},
		{Start: 4, End: 6, Lines: []string{"再见"}},
	})

	result, err := newService(t, cfg, WithGenerator(&translator{})).Merge(context.Background(), MergeRequest{
		SourcePath:     source,
		TranslatedPath: translated,
	})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if result.TranslationSource != TranslationFromFile || !result.Synced || result.TranslationPath != translated {
		t.Fatalf("unexpected result %+v", result)
	}
	if got := strings.Join(lines(testsupport.ReadTrack(t, translated)), ","); got != "你好,译1,再见" {
		t.Fatalf("translated track %q", got)
	}
	if _, err := os.Stat(filepath.Join(dir, "show.zh.srt")); !os.IsNotExist(err) {
		t.Fatalf("combined track should not be written, stat err=%v", err)
	}
}

func TestMergeWithoutGeneratorKeepsSentinels(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := cfg.Paths.OutputDir
	source := filepath.Join(dir, "show.srt")
	testsupport.WriteTrack(t, source, testsupport.Track("Hello", "Lost line"))
	translated := filepath.Join(t.TempDir(), "zh.srt")
	testsupport.WriteTrack(t, translated, srt.Track{{Start: 0, End: 2, Lines: []string{"你好 (Hello)"}}})

	result, err := newService(t, cfg).Merge(context.Background(), MergeRequest{SourcePath: source, TranslatedPath: translated, EnglishTop: true})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if result.TranslationSource != TranslationFromFile || !result.Fill.Skipped || result.Synced {
		t.Fatalf("unexpected result %+v", result)
	}
	bi := testsupport.ReadTrack(t, result.BilingualPath)
	if got := strings.Join(lines(bi), ","); got != "Hello|你好,Lost line|"+srt.Sentinel {
		t.Fatalf("bilingual track %q", got)
	}
}

func TestMergePrefersCombinedAndSplitSource(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := cfg.Paths.OutputDir
	testsupport.WriteTrack(t, filepath.Join(dir, "show.bi.srt"), testsupport.Track("旧|Hello"))
	testsupport.WriteTrack(t, filepath.Join(dir, SourceTrackName), testsupport.Track("Hello"))
	testsupport.WriteTrack(t, filepath.Join(dir, "show.zh.srt"), testsupport.Track("新的"))

	result, err := newService(t, cfg).Merge(context.Background(), MergeRequest{SourcePath: filepath.Join(dir, "show.bi.srt")})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if result.SourcePath != filepath.Join(dir, SourceTrackName) || result.TranslationSource != TranslationFromCombined {
		t.Fatalf("unexpected inputs %+v", result)
	}
	bi := testsupport.ReadTrack(t, result.BilingualPath)
	if got := strings.Join(lines(bi), ","); got != "新的|Hello" {
		t.Fatalf("bilingual track %q", got)
	}
}

func TestMergeWithoutTranslation(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	source := filepath.Join(cfg.Paths.OutputDir, "show.srt")
	testsupport.WriteTrack(t, source, testsupport.Track("Hello"))

	_, err := newService(t, cfg).Merge(context.Background(), MergeRequest{SourcePath: source})
	if !errors.Is(err, ErrNoTranslation) {
		t.Fatalf("expected ErrNoTranslation, got %v", err)
	}
}

func TestMergeChunksOrdersNumerically(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := filepath.Join(testsupport.BaseDir(cfg), "chunks")
	testsupport.WriteTrack(t, filepath.Join(dir, "chunk_1000.srt"), srt.Track{{Start: 8, End: 9, Lines: []string{"三"}}})
	testsupport.WriteTrack(t, filepath.Join(dir, "chunk_999.srt"), srt.Track{{Start: 4, End: 5, Lines: []string{"二"}}})
	testsupport.WriteTrack(t, filepath.Join(dir, "chunk_002.srt"), srt.Track{{Start: 0, End: 1, Lines: []string{"一"}}})
	testsupport.WriteTrack(t, filepath.Join(dir, "chunk_002.en.srt"), testsupport.Track("One"))

	out := filepath.Join(testsupport.BaseDir(cfg), "all.srt")
	n, err := newService(t, cfg).MergeChunks(context.Background(), dir, out)
	if err != nil || n != 3 {
		t.Fatalf("MergeChunks = %d, %v", n, err)
	}
	track := testsupport.ReadTrack(t, out)
	if got := strings.Join(lines(track), ","); got != "一,二,三" || track[2].Index != 3 {
		t.Fatalf("combined %q", got)
	}
}

func TestFillPatchesFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	path := filepath.Join(cfg.Paths.OutputDir, "show.bi.srt")
	testsupport.WriteTrack(t, path, testsupport.Track("你好|Hello", srt.Sentinel+"|Lost"))

	result, err := newService(t, cfg, WithGenerator(&translator{})).Fill(context.Background(), path)
	if err != nil {
		t.Fatalf("Fill: %v", err)
	}
	if !result.Written || result.Report.Patched != 1 || result.Report.Remaining() != 0 {
		t.Fatalf("unexpected result %+v", result.Report)
	}
	if got := testsupport.ReadTrack(t, path)[1].Lines[0]; got != "译1" {
		t.Fatalf("patched line %q", got)
	}
}

func TestFillNothingToDoLeavesFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	path := filepath.Join(cfg.Paths.OutputDir, "show.bi.srt")
	testsupport.WriteFile(t, path, "1\n00:00:00,000 --> 00:00:02,000\n你好\nHello\n")

	result, err := newService(t, cfg, WithGenerator(&translator{})).Fill(context.Background(), path)
	if err != nil || result.Written || result.Report.Gaps != 0 {
		t.Fatalf("unexpected %+v, %v", result, err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "1\n00:00:00,000 --> 00:00:02,000\n你好\nHello\n" {
		t.Fatal("file without gaps should not be rewritten")
	}
}

func TestFillRefusesLockedTrack(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	path := filepath.Join(cfg.Paths.OutputDir, "show.bi.srt")
	testsupport.WriteTrack(t, path, testsupport.Track(srt.Sentinel+"|Lost"))

	held := flock.New(path + ".lock")
	if ok, err := held.TryLock(); err != nil || !ok {
		t.Fatalf("TryLock = %v, %v", ok, err)
	}
	defer held.Unlock()

	_, err := newService(t, cfg, WithGenerator(&translator{})).Fill(context.Background(), path)
	if !errors.Is(err, ErrTrackLocked) || !errors.Is(err, services.ErrConflict) {
		t.Fatalf("expected ErrTrackLocked, got %v", err)
	}
}

func TestExtractTracks(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	path := filepath.Join(cfg.Paths.OutputDir, "show.bi.srt")
	testsupport.WriteTrack(t, path, testsupport.Track("你好|Hello", srt.Sentinel+"|Lost", "Only English"))

	result, err := newService(t, cfg).ExtractTracks(context.Background(), path, "")
	if err != nil {
		t.Fatalf("ExtractTracks: %v", err)
	}
	if filepath.Base(result.SourcePath) != "show.en.srt" || filepath.Base(result.TargetPath) != "show.zh.srt" {
		t.Fatalf("unexpected paths %+v", result)
	}
	source := testsupport.ReadTrack(t, result.SourcePath)
	target := testsupport.ReadTrack(t, result.TargetPath)
	if len(source) != 3 || len(target) != 3 {
		t.Fatalf("block structure lost: %d/%d", len(source), len(target))
	}
	if got := strings.Join(lines(target), ","); got != "你好,"+srt.Sentinel+"," {
		t.Fatalf("target track %q", got)
	}
	if got := strings.Join(lines(source), ","); got != "Hello,Lost,Only English" {
		t.Fatalf("source track %q", got)
	}
}

func TestValidateFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	path := filepath.Join(cfg.Paths.OutputDir, "chunk_000.cn.srt")
	testsupport.WriteFile(t, path, strings.Join([]string{
		"1\n00:00:00,000 --> 00:00:01,000\n你好\n",
		"2\n00:00:01,000 --> 00:00:02,000\n\n",
		"3\n00:00:02,000 --> 00:00:03,000\n再见 (Line 2 Merge)\n",
		"4\n00:00:03,000 --> 00:00:04,000\n(笑声)\n",
		"5\n00:00:04,000 --> 00:00:05,000\n" + srt.Sentinel + "\n",
		"6\n00:00:05,000 --> 00:00:06,000\n好的 (English)\n",
	}, "\n"))

	result, err := newService(t, cfg).Validate(context.Background(), path)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	var got []string
	for _, issue := range result.Issues {
		got = append(got, fmt.Sprintf("%d:%s", issue.Block, issue.Kind))
	}
	want := "2:empty,3:translator_note,4:parenthetical,5:untranslated,6:translator_note"
	if strings.Join(got, ",") != want {
		t.Fatalf("issues = %v want %s", got, want)
	}
	if result.OK() {
		t.Fatal("expected problems")
	}
}

func TestValidateChunkDirectory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	root := cfg.Paths.OutputDir
	chunks := filepath.Join(root, "chunks")
	testsupport.WriteTrack(t, filepath.Join(chunks, "chunk_000.srt"), testsupport.Track("One", "Two"))
	testsupport.WriteTrack(t, filepath.Join(chunks, "chunk_000.cn.srt"), testsupport.Track("一"))
	testsupport.WriteTrack(t, filepath.Join(chunks, "chunk_001.srt"), testsupport.Track("Three"))
	testsupport.WriteTrack(t, filepath.Join(chunks, "chunk_002.srt"), testsupport.Track("Four"))
	testsupport.WriteTrack(t, filepath.Join(chunks, "chunk_002.zh.srt"), testsupport.Track("四"))

	result, err := newService(t, cfg).Validate(context.Background(), root)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	kinds := map[string]int{}
	for _, issue := range result.Issues {
		kinds[issue.Kind]++
	}
	if kinds[IssueCountMismatch] != 1 || kinds[IssueMissingTranslation] != 1 || len(result.Issues) != 2 {
		t.Fatalf("unexpected issues %+v", result.Issues)
	}
	if result.Files != 2 {
		t.Fatalf("Files = %d want 2", result.Files)
	}
}

func TestCompare(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := cfg.Paths.OutputDir
	a := filepath.Join(dir, "a.srt")
	b := filepath.Join(dir, "b.srt")
	testsupport.WriteTrack(t, a, testsupport.Track("One", "Two", "Three", "Four", "Five"))
	testsupport.WriteTrack(t, b, testsupport.Track("一", "二"))

	cmp, err := newService(t, cfg).Compare(context.Background(), a, b)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if !cmp.CountMismatch || !cmp.DurationMismatch || cmp.Matched() {
		t.Fatalf("expected mismatches, got %+v", cmp)
	}
	if cmp.SourceBlocks != 5 || cmp.TranslatedBlocks != 2 || cmp.SourceDuration != 10 || cmp.TranslatedDuration != 4 {
		t.Fatalf("unexpected comparison %+v", cmp)
	}
}

func TestChunkTrack(t *testing.T) {
	track := testsupport.Track("a", "b", "c", "d", "e")
	tests := []struct {
		size int
		want []int
	}{
		{2, []int{2, 2, 1}},
		{5, []int{5}},
		{0, []int{5}},
	}
	for _, tt := range tests {
		chunks := ChunkTrack(track, tt.size)
		var sizes []int
		for _, c := range chunks {
			sizes = append(sizes, len(c))
		}
		if fmt.Sprint(sizes) != fmt.Sprint(tt.want) {
			t.Fatalf("size %d: got %v want %v", tt.size, sizes, tt.want)
		}
	}
	if ChunkTrack(nil, 3) != nil {
		t.Fatal("empty track should give no chunks")
	}
}
