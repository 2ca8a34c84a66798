package relationship

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/dyad/internal/decay"
	"github.com/MikeSquared-Agency/dyad/internal/trust"
)

// PathOp is a mutation applied to a path-addressed value.
type PathOp string

const (
	OpSetBase  PathOp = "set_base"
	OpSetDelta PathOp = "set_delta"
	OpAddDelta PathOp = "add_delta"
)

// ParsePathOp parses the wire form of a path op.
func ParsePathOp(s string) (PathOp, bool) {
	switch op := PathOp(s); op {
	case OpSetBase, OpSetDelta, OpAddDelta:
		return op, true
	}
	return "", false
}

var (
	// ErrUnknownPath is returned when a state path addresses no value.
	ErrUnknownPath = errors.New("unknown state path")
	// ErrHistoryDecrease is returned for ops that would lower the shared
	// history dimension, which only accumulates.
	ErrHistoryDecrease = errors.New("shared history cannot decrease")
)

// PathValue is the read form of one path-addressed value.
type PathValue struct {
	Path      string  `json:"path"`
	Base      float64 `json:"base"`
	Delta     float64 `json:"delta"`
	Effective float64 `json:"effective"`
}

// PathGet resolves a slash-separated state path to its current value.
// Recognized shapes:
//
//	shared/{affinity|respect|tension|intimacy|history}
//	directional/{trustor}/{dimension}
//	trust/{trustor}/competence/{domain}
//	trust/{trustor}/{benevolence|integrity}
//	risk/{trustor}
//
// where {trustor} is the UUID of one of the pair's entities.
func (r *Relationship) PathGet(path string) (PathValue, error) {
	v, _, err := r.resolvePath(path)
	if err != nil {
		return PathValue{}, err
	}
	return pathValue(path, v), nil
}

// PathApply mutates the value addressed by path and returns its new state.
// The shared/history path only grows: a negative add_delta is a silent
// no-op, and set ops that would lower its effective value are rejected.
func (r *Relationship) PathApply(path string, op PathOp, value float64) (PathValue, error) {
	switch op {
	case OpSetBase, OpSetDelta, OpAddDelta:
	default:
		return PathValue{}, fmt.Errorf("unknown path op %q", op)
	}

	v, monotonic, err := r.resolvePath(path)
	if err != nil {
		return PathValue{}, err
	}

	if monotonic {
		switch op {
		case OpAddDelta:
			if value < 0 {
				return pathValue(path, v), nil
			}
		case OpSetBase:
			if decay.Clamp(value+v.Delta, v.Lower, v.Upper) < v.Effective() {
				return PathValue{}, fmt.Errorf("%w: %s", ErrHistoryDecrease, path)
			}
		case OpSetDelta:
			if decay.Clamp(v.Base+value, v.Lower, v.Upper) < v.Effective() {
				return PathValue{}, fmt.Errorf("%w: %s", ErrHistoryDecrease, path)
			}
		}
	}

	switch op {
	case OpSetBase:
		v.SetBase(value)
	case OpSetDelta:
		v.SetDelta(value)
	case OpAddDelta:
		v.AddDelta(value)
	}
	return pathValue(path, v), nil
}

// resolvePath maps a path to the decay value it addresses. The second
// return is true for the monotonic shared/history value.
func (r *Relationship) resolvePath(path string) (*decay.Value, bool, error) {
	parts := strings.Split(path, "/")
	switch parts[0] {
	case "shared":
		if len(parts) != 2 {
			break
		}
		switch parts[1] {
		case "affinity":
			return r.Shared.Affinity, false, nil
		case "respect":
			return r.Shared.Respect, false, nil
		case "tension":
			return r.Shared.Tension, false, nil
		case "intimacy":
			return r.Shared.Intimacy, false, nil
		case "history":
			return r.Shared.History, true, nil
		}

	case "directional":
		if len(parts) != 3 {
			break
		}
		p, err := r.pathPerspective(parts[1], path)
		if err != nil {
			return nil, false, err
		}
		d := p.Dimensions
		switch parts[2] {
		case "warmth":
			return d.Warmth, false, nil
		case "resentment":
			return d.Resentment, false, nil
		case "dependence":
			return d.Dependence, false, nil
		case "attraction":
			return d.Attraction, false, nil
		case "attachment":
			return d.Attachment, false, nil
		case "jealousy":
			return d.Jealousy, false, nil
		case "fear":
			return d.Fear, false, nil
		case "obligation":
			return d.Obligation, false, nil
		}

	case "trust":
		if len(parts) < 3 {
			break
		}
		p, err := r.pathPerspective(parts[1], path)
		if err != nil {
			return nil, false, err
		}
		switch {
		case len(parts) == 3 && parts[2] == "benevolence":
			return p.Factors.Benevolence, false, nil
		case len(parts) == 3 && parts[2] == "integrity":
			return p.Factors.Integrity, false, nil
		case len(parts) == 4 && parts[2] == "competence":
			domain, ok := trust.ParseLifeDomain(parts[3])
			if !ok {
				break
			}
			if v, ok := p.Factors.Competence[domain]; ok {
				return v, false, nil
			}
		}

	case "risk":
		if len(parts) != 2 {
			break
		}
		p, err := r.pathPerspective(parts[1], path)
		if err != nil {
			return nil, false, err
		}
		return p.Risk.Level, false, nil
	}
	return nil, false, fmt.Errorf("%w: %q", ErrUnknownPath, path)
}

// pathPerspective resolves the trustor segment of a path to a perspective.
func (r *Relationship) pathPerspective(segment, path string) (*Perspective, error) {
	id, err := uuid.Parse(segment)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: bad trustor segment", ErrUnknownPath, path)
	}
	p, ok := r.Perspective(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q: %s is not part of pair %s", ErrUnknownPath, path, id, r.Key())
	}
	return p, nil
}

func pathValue(path string, v *decay.Value) PathValue {
	return PathValue{Path: path, Base: v.Base, Delta: v.Delta, Effective: v.Effective()}
}
