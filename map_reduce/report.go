package map_reduce

import (
	"bufio"
	"io"
	"sort"
	"strconv"
)

// Report is the final output: aggregates by count descending, ties broken by
// key ascending.
type Report []Aggregate

func NewReport(aggs []Aggregate) Report {
	report := make(Report, len(aggs))
	copy(report, aggs)
	sort.Slice(report, func(i, j int) bool {
		if report[i].Count != report[j].Count {
			return report[i].Count > report[j].Count
		}
		return report[i].Key < report[j].Key
	})
	return report
}

// Total is the number of tokens the report accounts for.
func (r Report) Total() int {
	total := 0
	for _, a := range r {
		total += a.Count
	}
	return total
}

// WriteTo writes one "key\tcount\n" line per aggregate.
func (r Report) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var written int64
	for _, a := range r {
		n, err := bw.WriteString(a.Key + "\t" + strconv.Itoa(a.Count) + "\n")
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
	return written, bw.Flush()
}
