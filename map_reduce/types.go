package map_reduce

// KeyValue is one map event: a token and the count it contributes.
type KeyValue struct {
	Key   string
	Value int
}

// Groups maps each distinct key to its values in encounter order. Iteration
// order is the map's and carries no meaning.
type Groups map[string][]int

type Group struct {
	Key    string
	Values []int
}

type Aggregate struct {
	Key   string
	Count int
}

type Mapper interface {
	Map(line string) []KeyValue
}

type Reducer interface {
	Reduce(key string, values []int) int
}
