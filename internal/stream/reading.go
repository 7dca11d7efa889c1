package stream

import (
	"strconv"
	"strings"

	"github.com/heartmarshall/lexreview/internal/domain"
)

// ParseReading decodes one reading token (the text between two '/' or a
// '/' and '$') into an Analysis.
//
// Guesser readings carry "|paradigm|frequency|" after the matched stem,
// e.g. "cat|cat&n|7|<n><sg>". The paradigm name has '/' written as '&'.
// Everything outside the second and third fields is the reading proper.
func ParseReading(token string) domain.Analysis {
	var (
		paradigm *string
		freq     int
	)

	if strings.Contains(token, "|") {
		fields := strings.Split(token, "|")
		par := strings.ReplaceAll(fields[1], "&", "/")
		paradigm = &par
		if len(fields) > 2 {
			// A malformed count is treated as no count.
			freq, _ = strconv.Atoi(fields[2])
		}
		residual := fields[0]
		if len(fields) > 3 {
			residual += strings.Join(fields[3:], "")
		}
		token = residual
	}

	token = strings.ReplaceAll(token, ">", "")
	parts := strings.Split(token, "<")

	tags := make([]string, 0, len(parts)-1)
	tags = append(tags, parts[1:]...)

	return domain.Analysis{
		Lemma:     parts[0],
		Tags:      tags,
		Paradigm:  paradigm,
		Frequency: freq,
	}
}
