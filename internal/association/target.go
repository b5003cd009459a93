package association

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
)

// Target references a related row either by id or, for label-keyed
// relations, by name. On the wire a number is an id and a string is a label;
// {id, name} objects as returned by reads are accepted too.
type Target struct {
	ID    int64
	Label string
}

func ID(id int64) Target { return Target{ID: id} }

func Label(label string) Target { return Target{Label: label} }

func (t *Target) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return fmt.Errorf("empty association target")
	}
	switch b[0] {
	case '"':
		return json.Unmarshal(b, &t.Label)
	case '{':
		var obj struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return err
		}
		t.ID, t.Label = obj.ID, obj.Name
		return nil
	default:
		return json.Unmarshal(b, &t.ID)
	}
}

func (t Target) MarshalJSON() ([]byte, error) {
	if t.ID > 0 {
		return json.Marshal(t.ID)
	}
	return json.Marshal(t.Label)
}

// TargetSet distinguishes "leave links alone" (unset) from "replace links
// with exactly these" (set, possibly empty). The zero value is unset.
type TargetSet struct {
	set     bool
	targets []Target
}

func Unset() TargetSet { return TargetSet{} }

func Set(targets ...Target) TargetSet {
	return TargetSet{set: true, targets: append([]Target{}, targets...)}
}

func IDs(ids ...int64) TargetSet {
	ts := TargetSet{set: true, targets: make([]Target, 0, len(ids))}
	for _, id := range ids {
		ts.targets = append(ts.targets, ID(id))
	}
	return ts
}

func Labels(labels ...string) TargetSet {
	ts := TargetSet{set: true, targets: make([]Target, 0, len(labels))}
	for _, l := range labels {
		ts.targets = append(ts.targets, Label(l))
	}
	return ts
}

func (s TargetSet) IsSet() bool { return s.set }

func (s TargetSet) Targets() []Target { return s.targets }

// UnmarshalJSON treats null as unset and any array, including [], as set.
func (s *TargetSet) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*s = TargetSet{}
		return nil
	}
	var targets []Target
	if err := json.Unmarshal(b, &targets); err != nil {
		return err
	}
	*s = Set(targets...)
	return nil
}

func (s TargetSet) MarshalJSON() ([]byte, error) {
	if !s.set {
		return []byte("null"), nil
	}
	return json.Marshal(s.Targets())
}
