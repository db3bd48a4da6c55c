package storage

import "strings"

// The legacy record format marked struck items by wrapping the whole line
// in tildes. The file backend keeps writing that form so old data files
// stay readable, but the sigil never leaks past decodeLine: in memory an
// item is always {Text, Struck}.

func decodeLine(line string) Item {
	if len(line) >= 2 && strings.HasPrefix(line, "~") && strings.HasSuffix(line, "~") {
		return Item{Text: line[1 : len(line)-1], Struck: true}
	}
	return Item{Text: line}
}

func encodeLine(it Item) string {
	if it.Struck {
		return "~" + it.Text + "~"
	}
	return it.Text
}
