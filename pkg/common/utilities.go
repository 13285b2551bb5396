package common

import (
	"strconv"
	"strings"
)

func ParseFloat(text string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(text), 64)
}

// FormatFloat prints the shortest representation that parses back to value.
func FormatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// SliceAtof splits text on delimiter and parses every field. Empty text is an absent list.
func SliceAtof(text, delimiter string) ([]float64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	fields := strings.Split(text, delimiter)
	values := make([]float64, 0, len(fields))
	for _, field := range fields {
		value, err := ParseFloat(field)
		if err != nil {
			return nil, err
		}
		values = append(values, value)
	}
	return values, nil
}

func JoinFloats(values []float64, delimiter string) string {
	fields := make([]string, len(values))
	for i, v := range values {
		fields[i] = FormatFloat(v)
	}
	return strings.Join(fields, delimiter)
}

func MaxOf(vars ...int) int {
	if len(vars) == 0 {
		return 0
	}

	max := vars[0]
	for _, i := range vars {
		if max < i {
			max = i
		}
	}

	return max
}
