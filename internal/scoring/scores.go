package scoring

import (
	"bytes"
	"encoding/json"
)

// DomainScores maps domain names to scores while preserving the order in
// which domains first appear in the profiler type's question list. Chart
// consumers rely on that order for stable axes.
type DomainScores struct {
	order  []string
	values map[string]float64
}

func NewDomainScores() *DomainScores {
	return &DomainScores{values: make(map[string]float64)}
}

// Set records a score, registering the domain on first use.
func (d *DomainScores) Set(domain string, score float64) {
	if _, ok := d.values[domain]; !ok {
		d.order = append(d.order, domain)
	}
	d.values[domain] = score
}

// Add accumulates onto a domain's score, registering it on first use.
func (d *DomainScores) Add(domain string, score float64) {
	if _, ok := d.values[domain]; !ok {
		d.order = append(d.order, domain)
	}
	d.values[domain] += score
}

func (d *DomainScores) Get(domain string) float64 {
	return d.values[domain]
}

// Domains returns the domain names in insertion order.
func (d *DomainScores) Domains() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

func (d *DomainScores) Len() int {
	return len(d.order)
}

// UnmarshalJSON reads a JSON object, keeping the key order of the document.
func (d *DomainScores) UnmarshalJSON(data []byte) error {
	d.order = nil
	d.values = make(map[string]float64)

	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return err
	}
	for dec.More() {
		keyToken, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyToken.(string)
		var value float64
		if err := dec.Decode(&value); err != nil {
			return err
		}
		d.Set(key, value)
	}
	_, err := dec.Token()
	return err
}

// MarshalJSON emits a JSON object with keys in insertion order.
func (d *DomainScores) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, domain := range d.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(domain)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(d.values[domain])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
