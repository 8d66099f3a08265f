package services

import (
	"fmt"
	"regexp"
	"strings"

	"onboarding-assistant/models"
)

// Chunker splits preprocessed document text into overlapping windows sized
// for retrieval, preferring to cut at sentence or paragraph boundaries.
type Chunker struct {
	chunkSize int
	overlap   int
}

var (
	lineEndingRegex = regexp.MustCompile(`\r\n?`)
	newlineRunRegex = regexp.MustCompile(`\n{3,}`)
	spaceRunRegex   = regexp.MustCompile(`[ \t]+`)
)

func NewChunker(chunkSize, overlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = 800
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 50
	}
	return &Chunker{chunkSize: chunkSize, overlap: overlap}
}

// Preprocess normalizes line endings, collapses blank-line runs and
// space/tab runs, and trims.
func (c *Chunker) Preprocess(text string) string {
	text = lineEndingRegex.ReplaceAllString(text, "\n")
	text = newlineRunRegex.ReplaceAllString(text, "\n\n")
	text = spaceRunRegex.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Chunk slides a window of chunkSize across content. When the window's right
// edge falls mid-document, the cut is moved back to the last '.' or newline
// within the last half of the window to avoid mid-sentence breaks. The start
// index advances by windowLength-overlap, but always by at least 1 so
// pathological input still terminates. Consecutive spans overlap but never
// leave gaps, and their union covers the whole content.
func (c *Chunker) Chunk(documentID, content string) []models.DocumentChunk {
	if content == "" {
		return nil
	}
	if len(content) <= c.chunkSize {
		return []models.DocumentChunk{{
			ID:         chunkID(documentID, 0),
			Content:    content,
			DocumentID: documentID,
			StartIndex: 0,
			EndIndex:   len(content),
		}}
	}

	var chunks []models.DocumentChunk
	start := 0
	for start < len(content) {
		end := start + c.chunkSize
		if end >= len(content) {
			end = len(content)
		} else {
			// Back off to the last sentence or paragraph boundary, as long
			// as it sits in the second half of the window.
			window := content[start:end]
			boundary := strings.LastIndexAny(window, ".\n")
			if boundary > len(window)/2 {
				end = start + boundary + 1
			}
		}

		chunks = append(chunks, models.DocumentChunk{
			ID:         chunkID(documentID, len(chunks)),
			Content:    content[start:end],
			DocumentID: documentID,
			StartIndex: start,
			EndIndex:   end,
		})

		if end == len(content) {
			break
		}

		advance := end - start - c.overlap
		if advance < 1 {
			advance = 1
		}
		start += advance
	}

	return chunks
}

// chunkID is the document id plus the chunk ordinal.
func chunkID(documentID string, ordinal int) string {
	return fmt.Sprintf("%s-%d", documentID, ordinal)
}
