package map_reduce

type WordCountMapper struct{}

func (m *WordCountMapper) Map(line string) []KeyValue {
	words := Tokenize(line)
	if len(words) == 0 {
		return nil
	}

	kvs := make([]KeyValue, 0, len(words))
	for _, word := range words {
		kvs = append(kvs, KeyValue{Key: word, Value: 1})
	}
	return kvs
}

type WordCountReducer struct{}

func (r *WordCountReducer) Reduce(key string, values []int) int {
	sum := 0
	for _, v := range values {
		sum += v
	}
	return sum
}
