package policy

const (
	kib int64 = 1024
	mib int64 = 1024 * kib
)

// matrixValues is the ordered list of flush values the benchmark
// matrix sweeps. the order is part of the report format.
var matrixValues = [...]int64{
	NeverValue,   // never flush
	OnCloseValue, // flush once at the end of writes
	100 * mib,
	10 * mib,
	1 * mib,
	512 * kib,
	256 * kib,
	128 * kib,
	64 * kib,
	32 * kib,
	16 * kib,
}

// matrix is built once from matrixValues
var matrix = buildMatrix()

func buildMatrix() []FlushPolicy {
	policies := make([]FlushPolicy, 0, len(matrixValues))
	for _, v := range matrixValues {
		p, err := Parse(v)
		if err != nil {
			// the table above is static, so this only trips on a bad edit
			panic(err)
		}
		policies = append(policies, p)
	}
	return policies
}

// Matrix returns the benchmark matrix policies in sweep order.
// the returned slice is a copy and may be modified by the caller.
func Matrix() []FlushPolicy {
	out := make([]FlushPolicy, len(matrix))
	copy(out, matrix)
	return out
}
