package ingest

import "strings"

// Chunk splits text into overlapping windows of at most targetSize characters.
// A window that does not reach the end of the text is cut after the last '.' or
// newline found past boundaryThreshold of the window.
func Chunk(text string, targetSize int, overlap int, boundaryThreshold float64) []string {
	runes := []rune(text)
	if targetSize <= 0 || len(runes) == 0 {
		return []string{}
	}
	if overlap < 0 || overlap >= targetSize {
		overlap = 0
	}
	minCut := int(float64(targetSize) * boundaryThreshold)

	chunks := []string{}
	start := 0
	for start < len(runes) {
		end := start + targetSize
		if end > len(runes) {
			end = len(runes)
		}

		if end < len(runes) {
			for i := end - 1; i > start+minCut; i-- {
				// a cut this early would not move the next window forward
				if i+1-overlap <= start {
					break
				}
				if runes[i] == '.' || runes[i] == '\n' {
					end = i + 1
					break
				}
			}
		}

		piece := string(runes[start:end])
		if strings.TrimSpace(piece) != "" {
			chunks = append(chunks, piece)
		}
		if end >= len(runes) {
			break
		}

		start = end - overlap
	}
	return chunks
}
