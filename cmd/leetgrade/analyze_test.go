package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/zalando/go-keyring"

	"github.com/dshills/leetgrade/internal/history"
	"github.com/dshills/leetgrade/internal/llm"
	"github.com/dshills/leetgrade/internal/report"
)

const validGrade = `{"Logic": 8, "Efficiency": 7, "Readability": 9}`

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func assertExitCode(t *testing.T, err error, wantCode int) {
	t.Helper()
	if wantCode == 0 {
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		return
	}
	if err == nil {
		t.Fatalf("expected exit code %d, got nil error", wantCode)
	}
	var ee *exitErr
	if !errors.As(err, &ee) {
		t.Fatalf("expected *exitErr, got %T: %v", err, err)
	}
	if ee.code != wantCode {
		t.Errorf("exit code = %d, want %d (msg: %s)", ee.code, wantCode, ee.msg)
	}
}

// baseFlags returns flags matching the command defaults, writing to out.
func baseFlags(out *bytes.Buffer) *analyzeFlags {
	return &analyzeFlags{
		question:      "Reverse a linked list",
		answer:        "// reverse the linked list in O(n)\nprev = None",
		format:        "json",
		rubricName:    "general",
		maxTokens:     1024,
		temperature:   0.2,
		redactEnabled: true,
		stdin:         strings.NewReader(""),
		stdout:        out,
		now:           func() time.Time { return time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC) },
	}
}

func decodeReport(t *testing.T, data []byte) report.Report {
	t.Helper()
	var rep report.Report
	if err := json.Unmarshal(data, &rep); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, data)
	}
	return rep
}

func TestRunAnalyzeHeuristicsOnly(t *testing.T) {
	var out bytes.Buffer
	err := runAnalyze(context.Background(), baseFlags(&out))
	assertExitCode(t, err, 0)

	rep := decodeReport(t, out.Bytes())
	if rep.Logic != 100 || rep.Efficiency != 90 || rep.Readability != 90 {
		t.Errorf("unexpected scores %+v", rep.Scores())
	}
	if rep.Tool != "leetgrade" || rep.Version != version {
		t.Errorf("tool/version = %s/%s", rep.Tool, rep.Version)
	}
	if rep.Input.QuestionSource != "question" || rep.Input.AnswerSource != "answer" {
		t.Errorf("unexpected sources %+v", rep.Input)
	}
	if rep.Grade != nil {
		t.Error("grade should be absent without --llm")
	}
}

func TestRunAnalyzeEmptyInputs(t *testing.T) {
	var out bytes.Buffer
	f := baseFlags(&out)
	f.question, f.answer = "", ""
	assertExitCode(t, runAnalyze(context.Background(), f), 0)

	rep := decodeReport(t, out.Bytes())
	if rep.Logic != 0 || rep.Efficiency != 0 || rep.Readability != 0 {
		t.Errorf("expected zero scores, got %+v", rep.Scores())
	}
}

func TestRunAnalyzeFromFiles(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	f := baseFlags(&out)
	f.question, f.answer = "", ""
	f.questionFile = writeTempFile(t, dir, "two-sum.md", "Two Sum: find indices adding to target\n")
	f.answerFile = writeTempFile(t, dir, "solution.py", "# hash map\ndef two_sum(nums, target):\n    pass\n")

	assertExitCode(t, runAnalyze(context.Background(), f), 0)
	rep := decodeReport(t, out.Bytes())
	if rep.Input.QuestionSource != "two-sum.md" || rep.Input.AnswerSource != "solution.py" {
		t.Errorf("unexpected sources %+v", rep.Input)
	}
	if rep.Readability != 90 {
		t.Errorf("readability = %d, want 90", rep.Readability)
	}
}

func TestRunAnalyzeAnswerFromStdin(t *testing.T) {
	var out bytes.Buffer
	f := baseFlags(&out)
	f.answer = ""
	f.answerFile = "-"
	f.stdin = strings.NewReader("reverse linked list")

	assertExitCode(t, runAnalyze(context.Background(), f), 0)
	rep := decodeReport(t, out.Bytes())
	if rep.Answer != "reverse linked list" || rep.Input.AnswerSource != "stdin" {
		t.Errorf("stdin not used: %q from %s", rep.Answer, rep.Input.AnswerSource)
	}
}

func TestRunAnalyzeInputErrors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*analyzeFlags)
	}{
		{"missing file", func(f *analyzeFlags) { f.answer = ""; f.answerFile = "/nonexistent/answer.py" }},
		{"text and file", func(f *analyzeFlags) { f.answerFile = "answer.py" }},
		{"both stdin", func(f *analyzeFlags) {
			f.question, f.answer = "", ""
			f.questionFile, f.answerFile = "-", "-"
		}},
		{"unknown format", func(f *analyzeFlags) { f.format = "yaml" }},
		{"bad fail-on", func(f *analyzeFlags) { f.failOn = "excellent" }},
		{"strong fail-on", func(f *analyzeFlags) { f.failOn = "strong" }},
		{"unknown rubric", func(f *analyzeFlags) {
			f.useLLM = true
			f.rubricName = "nonexistent-rubric-xyz"
			f.provider = &llm.MockProvider{Responses: []string{validGrade}}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			f := baseFlags(&out)
			tt.modify(f)
			assertExitCode(t, runAnalyze(context.Background(), f), 3)
		})
	}
}

func TestRunAnalyzeWithLLM(t *testing.T) {
	var out bytes.Buffer
	f := baseFlags(&out)
	f.useLLM = true
	mock := &llm.MockProvider{Responses: []string{validGrade}}
	f.provider = mock

	assertExitCode(t, runAnalyze(context.Background(), f), 0)
	rep := decodeReport(t, out.Bytes())
	if rep.Grade == nil || rep.Grade.Logic != 8 || rep.Grade.Readability != 9 {
		t.Fatalf("unexpected grade %+v", rep.Grade)
	}
	if rep.Meta == nil || rep.Meta.Model != "mock/(default)" || rep.Meta.Temperature != 0.2 {
		t.Errorf("unexpected meta %+v", rep.Meta)
	}
	if rep.Input.Rubric != "general" {
		t.Errorf("rubric = %q", rep.Input.Rubric)
	}
	if mock.Calls[0].MaxTokens != 1024 || mock.Calls[0].Seed != nil {
		t.Errorf("unexpected settings %+v", mock.Calls[0])
	}
}

func TestRunAnalyzeSeed(t *testing.T) {
	var out bytes.Buffer
	f := baseFlags(&out)
	f.useLLM = true
	f.seed, f.hasSeed = 7, true
	mock := &llm.MockProvider{Responses: []string{validGrade}}
	f.provider = mock

	assertExitCode(t, runAnalyze(context.Background(), f), 0)
	if mock.Calls[0].Seed == nil || *mock.Calls[0].Seed != 7 {
		t.Errorf("seed not passed: %+v", mock.Calls[0].Seed)
	}
}

func TestRunAnalyzeLLMError(t *testing.T) {
	var out bytes.Buffer
	f := baseFlags(&out)
	f.useLLM = true
	f.provider = &llm.MockProvider{Err: errors.New("model exploded")}
	assertExitCode(t, runAnalyze(context.Background(), f), 4)
}

func TestRunAnalyzeNoProviderConfigured(t *testing.T) {
	keyring.MockInit()
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	var out bytes.Buffer
	f := baseFlags(&out)
	f.useLLM = true
	assertExitCode(t, runAnalyze(context.Background(), f), 4)
}

func TestRunAnalyzeLLMReturnsNonJSON(t *testing.T) {
	var out bytes.Buffer
	f := baseFlags(&out)
	f.useLLM = true
	f.provider = &llm.MockProvider{Responses: []string{"this is not json at all"}}
	assertExitCode(t, runAnalyze(context.Background(), f), 5)
}

func TestRunAnalyzeRepairSucceeds(t *testing.T) {
	var out bytes.Buffer
	f := baseFlags(&out)
	f.useLLM = true
	mock := &llm.MockProvider{Responses: []string{`{"Logic": 11, "Efficiency": 7, "Readability": 9}`, validGrade}}
	f.provider = mock

	assertExitCode(t, runAnalyze(context.Background(), f), 0)
	if len(mock.Prompts) != 2 {
		t.Errorf("expected a repair call, got %d calls", len(mock.Prompts))
	}
}

func TestRunAnalyzeFormatMarkdown(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "out.md")
	var out bytes.Buffer
	f := baseFlags(&out)
	f.format = "md"
	f.out = outPath

	assertExitCode(t, runAnalyze(context.Background(), f), 0)
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "# LeetGrade Report") {
		t.Error("expected markdown header in output")
	}
	if out.Len() != 0 {
		t.Error("nothing should be written to stdout when --out is set")
	}
}

func TestRunAnalyzeFormatText(t *testing.T) {
	var out bytes.Buffer
	f := baseFlags(&out)
	f.format = "text"
	assertExitCode(t, runAnalyze(context.Background(), f), 0)
	if !strings.Contains(out.String(), "100/100") {
		t.Errorf("unexpected text output:\n%s", out.String())
	}
}

func TestRunAnalyzeFailOn(t *testing.T) {
	tests := []struct {
		name   string
		failOn string
		answer string
		want   int
	}{
		{"strong passes fair", "fair", "// reverse the linked list in O(n)", 0},
		{"weak meets weak", "weak", "", 2},
		{"weak meets fair", "fair", "", 2},
		{"case insensitive", "WEAK", "", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			f := baseFlags(&out)
			f.answer = tt.answer
			f.failOn = tt.failOn
			assertExitCode(t, runAnalyze(context.Background(), f), tt.want)
			if out.Len() == 0 {
				t.Error("report should be written even when the threshold is met")
			}
		})
	}
}

func TestRunAnalyzeRecordsHistory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	var out bytes.Buffer
	f := baseFlags(&out)
	f.historyPath = dbPath

	assertExitCode(t, runAnalyze(context.Background(), f), 0)
	rep := decodeReport(t, out.Bytes())

	store, err := history.Open(context.Background(), dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	got, err := store.Get(context.Background(), rep.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Logic != rep.Logic {
		t.Errorf("stored logic = %d, want %d", got.Logic, rep.Logic)
	}
}

func TestRunAnalyzeDebugWritesPromptFile(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)

	var out bytes.Buffer
	f := baseFlags(&out)
	f.useLLM = true
	f.debug = true
	f.provider = &llm.MockProvider{Responses: []string{validGrade}}

	assertExitCode(t, runAnalyze(context.Background(), f), 0)
	data, err := os.ReadFile(filepath.Join(tmpDir, debugPromptFile))
	if err != nil {
		t.Fatal("expected debug prompt file to be created")
	}
	if !strings.Contains(string(data), "strict coding interviewer") {
		t.Error("debug prompt should include the system role")
	}
}

func TestRunAnalyzeRedaction(t *testing.T) {
	secretAnswer := "client = OpenAI(api_key=sk-abcdefghijklmnopqrstuvwxyz)"
	tests := []struct {
		name     string
		redact   bool
		wantLeak bool
	}{
		{"enabled", true, false},
		{"disabled", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			f := baseFlags(&out)
			f.useLLM = true
			f.answer = secretAnswer
			f.redactEnabled = tt.redact
			mock := &llm.MockProvider{Responses: []string{validGrade}}
			f.provider = mock

			assertExitCode(t, runAnalyze(context.Background(), f), 0)
			leaked := strings.Contains(mock.Prompts[0], "sk-abcdefghijklmnopqrstuvwxyz")
			if leaked != tt.wantLeak {
				t.Errorf("secret in prompt = %v, want %v", leaked, tt.wantLeak)
			}
			rep := decodeReport(t, out.Bytes())
			if rep.Answer != secretAnswer {
				t.Error("the local report keeps the answer as given")
			}
		})
	}
}
