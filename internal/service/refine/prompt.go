package refine

import (
	"fmt"
	"strings"

	"github.com/team-mirai-volunteer/video-processor-sub003/internal/model"
)

// promptTailRunes caps how much of the previous chunk's output is carried
// into the next prompt as context.
const promptTailRunes = 200

// BuildChunkPrompt renders the refinement request for one chunk. segments is
// the transcript's full segment list; the chunk's window selects the slice
// that gets embedded. prevTail carries the closing sentences of the previous
// chunk for context and is empty for the first chunk.
func BuildChunkPrompt(chunk Chunk, segments []model.TranscriptSegment, dict Dictionary, prevTail string) string {
	var b strings.Builder

	b.WriteString("あなたは文字起こしの校正者です。音声認識が生成した以下のセグメント列を、")
	b.WriteString("意味の通る文単位にまとめ直し、誤認識を修正用語集に従って置き換えてください。\n\n")

	if len(dict.Entries) > 0 {
		b.WriteString("修正用語集(正しい表記 ← よくある誤認識):\n")
		for _, entry := range dict.Entries {
			b.WriteString("- " + entry.Term)
			if len(entry.Misrecognitions) > 0 {
				b.WriteString(" ← " + strings.Join(entry.Misrecognitions, "、"))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "これはチャンク %d/%d です。\n\n", chunk.Index+1, chunk.Total)

	if prevTail != "" {
		b.WriteString("直前チャンクの末尾(文脈の参考のみ。出力に含めないこと):\n")
		b.WriteString(prevTail)
		b.WriteString("\n\n")
	}

	b.WriteString("セグメント(インデックス: [開始秒-終了秒] テキスト):\n")
	for i := chunk.Start; i < chunk.End; i++ {
		seg := segments[i]
		fmt.Fprintf(&b, "%d: [%.1f-%.1f] %s\n", i, seg.StartSeconds, seg.EndSeconds, seg.Text)
	}
	b.WriteString("\n")

	b.WriteString("次のJSONだけを出力してください:\n")
	b.WriteString(`{"sentences": [{"text": "修正済みの文", "segment_indices": [0, 1]}]}`)
	b.WriteString("\n\n")

	b.WriteString("ルール:\n")
	b.WriteString("- 上記のすべてのインデックスを、ちょうど1つの文のsegment_indicesに割り当てること\n")
	b.WriteString("- segment_indicesは昇順の連続した範囲にすること\n")
	b.WriteString("- 各文は「。」「!」「?」のいずれかで終えること\n")
	b.WriteString("- フィラー(えー、あのー 等)は取り除いてよいが、発言内容は変えないこと\n")

	return b.String()
}

// tailText collects whole sentences from the end of the list until adding
// another would exceed maxRunes. At least the final sentence is returned,
// cut down to its last maxRunes runes when it alone is too long.
func tailText(sentences []model.RefinedSentence, maxRunes int) string {
	if len(sentences) == 0 {
		return ""
	}

	var picked []string
	total := 0
	for i := len(sentences) - 1; i >= 0; i-- {
		text := sentences[i].Text
		n := len([]rune(text))
		if len(picked) > 0 && total+n > maxRunes {
			break
		}
		picked = append([]string{text}, picked...)
		total += n
	}

	tail := strings.Join(picked, "")
	if runes := []rune(tail); len(runes) > maxRunes {
		tail = string(runes[len(runes)-maxRunes:])
	}
	return tail
}
