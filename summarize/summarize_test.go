package summarize

import (
	"strings"
	"testing"
)

func TestMethodFor_Boundaries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		words int
		want  Method
	}{
		{1, MethodTextRank},
		{79, MethodTextRank},
		{80, MethodLSA},
		{299, MethodLSA},
		{300, MethodLexRank},
		{5000, MethodLexRank},
	}

	for _, tt := range tests {
		if got := MethodFor(tt.words); got != tt.want {
			t.Errorf("MethodFor(%d) = %v, want %v", tt.words, got, tt.want)
		}
	}
}

func TestBudget(t *testing.T) {
	t.Parallel()

	tests := []struct {
		total int
		want  int
	}{
		{4, 2},
		{5, 2},
		{6, 3},
		{10, 3},
		{11, 4},
		{20, 4},
		{21, 5},
		{24, 6},
		{100, 25},
		{8, 3},
	}

	for _, tt := range tests {
		if got := budget(tt.total); got != tt.want {
			t.Errorf("budget(%d) = %d, want %d", tt.total, got, tt.want)
		}
	}
}

func TestDocument_ShortInputUnchanged(t *testing.T) {
	t.Parallel()

	in := "  First sentence here. Second sentence here. Third sentence here.  "
	want := strings.TrimSpace(in)

	if got := Document(in); got != want {
		t.Errorf("Document() = %q, want trimmed input %q", got, want)
	}
}

func TestDocument_SingleSentence(t *testing.T) {
	t.Parallel()

	in := "Just one sentence without much going on."
	if got := Document(in); got != in {
		t.Errorf("Document() = %q, want %q", got, in)
	}
}

const sixSentences = "The weather station records temperature every hour during the day. " +
	"Temperature readings from the station feed into the daily forecast model. " +
	"The forecast model combines temperature with wind and humidity data. " +
	"Wind measurements come from a separate sensor on the station mast. " +
	"Humidity data is collected by the same station twice per hour. " +
	"All collected data is archived by the station for later analysis."

func TestWithMethod_ReducesSentenceCount(t *testing.T) {
	t.Parallel()

	for _, m := range []Method{MethodTextRank, MethodLSA, MethodLexRank} {
		got := WithMethod(sixSentences, m)
		if got == "" {
			t.Fatalf("method %v returned empty summary", m)
		}

		gotSents := splitSentences(got)
		if len(gotSents) != 3 {
			t.Errorf("method %v: got %d sentences, want 3 (budget for 6)", m, len(gotSents))
		}

		for _, s := range gotSents {
			if !strings.Contains(sixSentences, s) {
				t.Errorf("method %v produced sentence not in input: %q", m, s)
			}
		}
	}
}

func TestWithMethod_PreservesDocumentOrder(t *testing.T) {
	t.Parallel()

	got := WithMethod(sixSentences, MethodTextRank)

	var last int
	for _, s := range splitSentences(got) {
		idx := strings.Index(sixSentences, s)
		if idx < last {
			t.Fatalf("summary sentences out of document order: %q", got)
		}
		last = idx
	}
}

func TestWithMethod_EmptyStrategyFallsBack(t *testing.T) {
	t.Parallel()

	// Every word is a stopword so the term-sentence matrix is empty
	// and the LSA strategy can't rank anything
	in := "It is the and. They are of to. We was the a. He she it the."

	if got := WithMethod(in, MethodLSA); got != in {
		t.Errorf("WithMethod() = %q, want original input on empty strategy output", got)
	}
}

func TestWithMethod_UnknownMethodUsesFallbackStrategy(t *testing.T) {
	t.Parallel()

	if got := WithMethod(sixSentences, Method(99)); got == "" {
		t.Error("unknown method produced empty summary")
	}
}
