package loader

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/OFFIS-RIT/plotline/backend/pkg/common"
	"github.com/OFFIS-RIT/plotline/backend/pkg/logger"

	"golang.org/x/text/encoding/simplifiedchinese"
)

const (
	// WholeTextTitle is the chapter title used when no heading is found.
	WholeTextTitle = "全文"
	UnknownAuthor  = "未知"

	metadataLines = 10
)

var (
	chapterHeading = regexp.MustCompile(
		`^(?:第[零一二三四五六七八九十百千万\d]+[章回]|Chapter\s+\d+|\d+\.|\d+、)`,
	)
	authorPrefix = regexp.MustCompile(`(?i)(?:作者|author)[：:]\s*`)
	titlePrefix  = regexp.MustCompile(`(?i)(?:书名|title)[：:]\s*`)
)

// ParseNovel turns a plain text file into a novel. Lines matching a
// chapter heading (第X章, 第X回, Chapter N, "N." or "N、") start a new
// chapter, every other non-empty line is a paragraph. Text before the first
// heading is dropped. When no heading is found the whole text becomes a
// single chapter titled WholeTextTitle. Headings without any paragraph are
// skipped so chapter numbers stay consecutive.
//
// Data that is not valid UTF-8 is decoded as GBK. Title and author are
// taken from "书名:"/"Title:" and "作者:"/"Author:" lines within the first
// ten lines, the title falls back to name without its .txt extension.
func ParseNovel(id, name string, data []byte) (common.Novel, error) {
	content, err := decode(data)
	if err != nil {
		return common.Novel{}, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	lines := strings.Split(content, "\n")

	title, author := extractMetadata(lines, name)
	novel := common.Novel{
		ID:       id,
		Title:    title,
		Author:   author,
		Chapters: splitChapters(lines),
	}

	logger.Debug("[Loader] Novel parsed", "name", name, "chapters", len(novel.Chapters), "words", novel.TotalWords())
	return novel, nil
}

func decode(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		decoded, err := simplifiedchinese.GBK.NewDecoder().Bytes(data)
		if err != nil {
			return "", err
		}
		logger.Debug("[Loader] Decoded input as GBK", "bytes", len(data))
		data = decoded
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.ReplaceAll(text, "\x00", ""), nil
}

func splitChapters(lines []string) []common.Chapter {
	chapters := make([]common.Chapter, 0)
	var title string
	var paragraphs []string
	inChapter := false

	flush := func() {
		if !inChapter || len(paragraphs) == 0 {
			return
		}
		chapters = append(chapters, newChapter(len(chapters)+1, title, paragraphs))
	}

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if chapterHeading.MatchString(line) {
			flush()
			inChapter = true
			title = line
			paragraphs = nil
			continue
		}
		if inChapter {
			paragraphs = append(paragraphs, line)
		}
	}
	flush()

	if inChapter {
		return chapters
	}

	all := make([]string, 0, len(lines))
	for _, raw := range lines {
		if line := strings.TrimSpace(raw); line != "" {
			all = append(all, line)
		}
	}
	if len(all) == 0 {
		return chapters
	}
	return append(chapters, newChapter(1, WholeTextTitle, all))
}

func newChapter(number int, title string, paragraphs []string) common.Chapter {
	return common.Chapter{
		Number:     number,
		Title:      title,
		Content:    strings.Join(paragraphs, "\n"),
		Paragraphs: paragraphs,
	}
}

func extractMetadata(lines []string, name string) (string, string) {
	title := strings.TrimSuffix(name, ".txt")
	author := UnknownAuthor

	for _, raw := range lines[:min(len(lines), metadataLines)] {
		line := strings.TrimSpace(raw)
		lower := strings.ToLower(line)
		switch {
		case strings.Contains(line, "作者") || strings.Contains(lower, "author"):
			if v := strings.TrimSpace(authorPrefix.ReplaceAllString(line, "")); v != "" {
				author = v
			}
		case strings.Contains(line, "书名") || strings.Contains(lower, "title"):
			if v := strings.TrimSpace(titlePrefix.ReplaceAllString(line, "")); v != "" {
				title = v
			}
		}
	}
	return title, author
}
