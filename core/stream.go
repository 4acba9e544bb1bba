package core

import (
	"fmt"

	"github.com/tsawler/textpos/internal/filters"
)

// Decode runs the stream's /Filter chain and returns the decoded bytes.
// A stream without /Filter is returned as-is. Indirect /Filter or
// /DecodeParms values need DecodeWith.
func (s *Stream) Decode() ([]byte, error) {
	return s.DecodeWith(nil)
}

// DecodeWith is Decode with r resolving indirect /Filter and /DecodeParms
// values, and indirect elements of their arrays.
func (s *Stream) DecodeWith(r Resolver) ([]byte, error) {
	names, params, err := s.filterChain(r)
	if err != nil {
		return nil, err
	}

	data := s.Data
	for i, name := range names {
		data, err = filters.Decode(name, data, params[i])
		if err != nil {
			return nil, fmt.Errorf("filter %d (%s): %w", i, name, err)
		}
	}
	return data, nil
}

// maxIndirect bounds the references followed for one filter value.
const maxIndirect = 32

func resolveDirect(obj Object, r Resolver) (Object, error) {
	for i := 0; i < maxIndirect; i++ {
		ref, ok := obj.(Ref)
		if !ok {
			return obj, nil
		}
		if r == nil {
			return nil, fmt.Errorf("cannot resolve %s without a resolver", ref)
		}
		var err error
		if obj, err = r.ResolveReference(ref); err != nil {
			return nil, fmt.Errorf("resolve %s: %w", ref, err)
		}
	}
	return nil, fmt.Errorf("reference chain longer than %d", maxIndirect)
}

// filterChain normalises /Filter and /DecodeParms into parallel slices.
func (s *Stream) filterChain(r Resolver) ([]string, []filters.Params, error) {
	f, err := resolveDirect(s.Dict.Get("Filter"), r)
	if err != nil {
		return nil, nil, fmt.Errorf("/Filter: %w", err)
	}
	var names []string
	switch f := f.(type) {
	case nil, Null:
		return nil, nil, nil
	case Name:
		names = []string{string(f)}
	case Array:
		for i, elem := range f {
			elem, err := resolveDirect(elem, r)
			if err != nil {
				return nil, nil, fmt.Errorf("filter %d: %w", i, err)
			}
			n, ok := elem.(Name)
			if !ok {
				return nil, nil, fmt.Errorf("filter %d is %s, not a name", i, KindOf(elem))
			}
			names = append(names, string(n))
		}
	default:
		return nil, nil, fmt.Errorf("invalid /Filter: %s", f.Kind())
	}

	dp, err := resolveDirect(s.Dict.Get("DecodeParms"), r)
	if err != nil {
		return nil, nil, fmt.Errorf("/DecodeParms: %w", err)
	}
	params := make([]filters.Params, len(names))
	switch dp := dp.(type) {
	case Dict:
		params[0] = decodeParams(dp)
	case Array:
		for i := 0; i < len(dp) && i < len(params); i++ {
			elem, err := resolveDirect(dp[i], r)
			if err != nil {
				return nil, nil, fmt.Errorf("decode parms %d: %w", i, err)
			}
			if d, ok := elem.(Dict); ok {
				params[i] = decodeParams(d)
			}
		}
	}
	for i := range params {
		if params[i] == (filters.Params{}) {
			params[i] = filters.DefaultParams()
		}
	}
	return names, params, nil
}

func decodeParams(d Dict) filters.Params {
	p := filters.DefaultParams()
	intParam := func(key string, dst *int) {
		if v, ok := d.GetInt(key); ok {
			*dst = int(v)
		}
	}
	intParam("Predictor", &p.Predictor)
	intParam("Colors", &p.Colors)
	intParam("BitsPerComponent", &p.BitsPerComponent)
	intParam("Columns", &p.Columns)
	intParam("EarlyChange", &p.EarlyChange)
	return p
}
