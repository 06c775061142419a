package sparse

import (
	"math"
	"sort"

	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
	"github.com/viterin/vek/vek32"
)

func init() {
	serializer.RegisterTypedDeserializer((&Vector{}).SerializerType(),
		DeserializeVector)
}

// Vector is a list with potentially many zero entries.
type Vector struct {
	// Len is the total number of elements (including
	// zeros) in the represented vector.
	Len int

	// Indices stores the index of each non-zero value in
	// ascending order.
	// Each index corresponds to an entry in Values.
	Indices []int

	Values []float32
}

// NewVector creates a zero vector of the given length.
func NewVector(n int) *Vector {
	return &Vector{Len: n}
}

// DeserializeVector deserializes a Vector.
func DeserializeVector(d []byte) (*Vector, error) {
	var res Vector
	err := serializer.DeserializeAny(d, &res.Len, &res.Indices, &res.Values)
	if err != nil {
		return nil, essentials.AddCtx("deserialize Vector", err)
	}
	if len(res.Indices) == 0 {
		// Save memory and make deep equality hold.
		res.Indices = nil
		res.Values = nil
	}
	return &res, nil
}

// Get reads the entry at the index.
func (v *Vector) Get(i int) float32 {
	idx := sort.SearchInts(v.Indices, i)
	if idx == len(v.Indices) || v.Indices[idx] != i {
		return 0
	}
	return v.Values[idx]
}

// Set sets the entry at the index.
func (v *Vector) Set(i int, val float32) {
	idx := sort.SearchInts(v.Indices, i)
	if idx == len(v.Indices) {
		v.Indices = append(v.Indices, i)
		v.Values = append(v.Values, val)
	} else if v.Indices[idx] != i {
		v.Indices = append(v.Indices, 0)
		v.Values = append(v.Values, 0)
		copy(v.Indices[idx+1:], v.Indices[idx:])
		copy(v.Values[idx+1:], v.Values[idx:])
		v.Indices[idx] = i
		v.Values[idx] = val
	} else {
		v.Values[idx] = val
	}
}

// Add adds val to the entry at the index.
func (v *Vector) Add(i int, val float32) {
	v.Set(i, v.Get(i)+val)
}

// AddVector adds other to v in place.
func (v *Vector) AddVector(other *Vector) {
	if len(other.Indices) == 0 {
		return
	}
	indices := make([]int, 0, len(v.Indices)+len(other.Indices))
	values := make([]float32, 0, cap(indices))
	var i, j int
	for i < len(v.Indices) || j < len(other.Indices) {
		switch {
		case j == len(other.Indices) || (i < len(v.Indices) && v.Indices[i] < other.Indices[j]):
			indices = append(indices, v.Indices[i])
			values = append(values, v.Values[i])
			i++
		case i == len(v.Indices) || other.Indices[j] < v.Indices[i]:
			indices = append(indices, other.Indices[j])
			values = append(values, other.Values[j])
			j++
		default:
			indices = append(indices, v.Indices[i])
			values = append(values, v.Values[i]+other.Values[j])
			i++
			j++
		}
	}
	v.Indices = indices
	v.Values = values
}

// Scale multiplies every entry by s.
func (v *Vector) Scale(s float32) {
	if len(v.Values) > 0 {
		vek32.MulNumber_Inplace(v.Values, s)
	}
}

// Dot computes the dot product of two vectors.
func (v *Vector) Dot(other *Vector) float64 {
	var sum float64
	var i, j int
	for i < len(v.Indices) && j < len(other.Indices) {
		switch {
		case v.Indices[i] < other.Indices[j]:
			i++
		case v.Indices[i] > other.Indices[j]:
			j++
		default:
			sum += float64(v.Values[i]) * float64(other.Values[j])
			i++
			j++
		}
	}
	return sum
}

// Norm computes the Euclidean norm of the vector.
func (v *Vector) Norm() float64 {
	if len(v.Values) == 0 {
		return 0
	}
	return math.Sqrt(float64(vek32.Dot(v.Values, v.Values)))
}

// NumNonZero returns the number of stored entries.
func (v *Vector) NumNonZero() int {
	return len(v.Indices)
}

// Copy creates a deep copy of the vector.
func (v *Vector) Copy() *Vector {
	res := &Vector{Len: v.Len}
	if len(v.Indices) > 0 {
		res.Indices = append([]int{}, v.Indices...)
		res.Values = append([]float32{}, v.Values...)
	}
	return res
}

// SerializerType returns the unique ID used to serialize
// a Vector with the serializer package.
func (v *Vector) SerializerType() string {
	return "github.com/unixpickle/wordsense/sparse.Vector"
}

// Serialize serializes the Vector.
func (v *Vector) Serialize() ([]byte, error) {
	return serializer.SerializeAny(v.Len, v.Indices, v.Values)
}
