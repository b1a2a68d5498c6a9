package mysql

import "encoding/json"

// listColumn marshals a category list for a JSON column. nil slices
// are stored as [] so reads never see null.
func listColumn(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	s := string(b)
	if s == "null" {
		s = "[]"
	}
	return s, nil
}

// scanList decodes a JSON column into a category list, tolerating
// NULL and empty columns.
func scanList(raw []byte, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}
