package metrics

import "sync/atomic"

var (
	transcriptions      int64
	transcriptionErrors int64
	extractions         int64
	generationFailures  int64
	parseFallbacks      int64
	callsSaved          int64
	saveFailures        int64
)

func IncTranscribed()         { atomic.AddInt64(&transcriptions, 1) }
func IncTranscriptionFailed() { atomic.AddInt64(&transcriptionErrors, 1) }
func IncExtracted()           { atomic.AddInt64(&extractions, 1) }
func IncGenerationFailed()    { atomic.AddInt64(&generationFailures, 1) }
func IncParseFallback()       { atomic.AddInt64(&parseFallbacks, 1) }
func IncSaved()               { atomic.AddInt64(&callsSaved, 1) }
func IncSaveFailed()          { atomic.AddInt64(&saveFailures, 1) }

func Snapshot() map[string]int64 {
	return map[string]int64{
		"transcriptions":       atomic.LoadInt64(&transcriptions),
		"transcription_errors": atomic.LoadInt64(&transcriptionErrors),
		"extractions":          atomic.LoadInt64(&extractions),
		"generation_failures":  atomic.LoadInt64(&generationFailures),
		"parse_fallbacks":      atomic.LoadInt64(&parseFallbacks),
		"calls_saved":          atomic.LoadInt64(&callsSaved),
		"save_failures":        atomic.LoadInt64(&saveFailures),
	}
}
