package sandbox

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// messer degrades clean attributes the way upstream systems do.
type messer struct {
	rng      *rand.Rand
	nullRate float64
}

func (m *messer) chance(p float64) bool { return m.rng.Float64() < p }

// nullable drops a value at the configured rate.
func (m *messer) nullable(v string) *string {
	if m.chance(m.nullRate) {
		return nil
	}
	return &v
}

func (m *messer) name(clean string) string {
	out := clean
	switch m.rng.IntN(6) {
	case 0:
		out = strings.ToUpper(out)
	case 1:
		out = strings.TrimSuffix(out, ".") + " LLC"
	case 2:
		if !strings.HasSuffix(out, "Inc.") {
			out += ", Inc."
		}
	case 3:
		out = strings.ReplaceAll(out, "Blue Cross Blue Shield", "BCBS")
		out = strings.ReplaceAll(out, " and ", " & ")
	case 4:
		out = strings.ReplaceAll(out, ".", "")
	}
	if m.chance(0.1) {
		out += " "
	}
	return out
}

func (m *messer) taxID(clean string) string {
	d := []byte(clean)
	if len(d) > 3 && m.chance(0.08) {
		i := 1 + m.rng.IntN(len(d)-2)
		d[i], d[i+1] = d[i+1], d[i]
	}
	if m.chance(0.5) {
		return string(d[:2]) + "-" + string(d[2:])
	}
	return string(d)
}

func (m *messer) phone(digits string) string {
	a, b, c := digits[:3], digits[3:6], digits[6:]
	switch m.rng.IntN(5) {
	case 0:
		return fmt.Sprintf("(%s) %s-%s", a, b, c)
	case 1:
		return fmt.Sprintf("%s-%s-%s", a, b, c)
	case 2:
		return fmt.Sprintf("%s.%s.%s", a, b, c)
	case 3:
		return fmt.Sprintf("+1 %s %s %s", a, b, c)
	default:
		return digits
	}
}

func (m *messer) state(code string) string {
	if full, ok := stateNames[code]; ok && m.chance(0.3) {
		if m.chance(0.5) {
			return strings.ToUpper(full)
		}
		return full
	}
	return code
}

func (m *messer) zip(zip5 string) string {
	if m.chance(0.3) {
		return fmt.Sprintf("%s-%04d", zip5, m.rng.IntN(10000))
	}
	return zip5
}

func (m *messer) address(clean string) string {
	r := strings.NewReplacer("Street", "St", "Avenue", "Ave", "Boulevard", "Blvd", "Drive", "Dr", "Road", "Rd")
	switch m.rng.IntN(3) {
	case 0:
		return r.Replace(clean)
	case 1:
		return strings.ToUpper(clean)
	default:
		return clean
	}
}
