package diff

import "strings"

// splitLines splits text after every "\n", keeping the terminator on each line. A "\r\n" pair
// stays intact because the '\r' precedes the split point; a lone '\r' is ordinary content. The
// last line has no terminator when text does not end in "\n".
func splitLines(text string) []string {
	if text == "" {
		return nil
	}

	lines := make([]string, 0, strings.Count(text, "\n")+1)
	for text != "" {
		idx := strings.IndexByte(text, '\n')
		if idx == -1 {
			lines = append(lines, text)
			break
		}
		lines = append(lines, text[:idx+1])
		text = text[idx+1:]
	}
	return lines
}

// trimEOL strips a trailing "\n" or "\r\n" from line.
func trimEOL(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}

// countLines returns the number of lines splitLines would produce for text.
func countLines(text string) int {
	if text == "" {
		return 0
	}
	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}
