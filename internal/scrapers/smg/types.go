package smg

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

type smgData struct {
	Menu  []week                       `json:"menu"`
	Items map[string][]json.RawMessage `json:"items"`
}

type week struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Menus     []struct {
		Tabs []tab `json:"tabs"`
	} `json:"menus"`
}

type tab struct {
	Title  string  `json:"title"`
	Groups []group `json:"groups"`
}

type group struct {
	Title    string     `json:"title"`
	Category []category `json:"category"`
}

type category struct {
	Title    string      `json:"title"`
	Products []productId `json:"products"`
}

// productId is either a json string or number.
type productId string

func (p *productId) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		err := json.Unmarshal(data, &s)
		*p = productId(s)
		return err
	}
	var n json.Number
	err := json.Unmarshal(data, &n)
	*p = productId(n.String())
	return err
}

// item fields live at fixed offsets of the aData rows.
const (
	fieldName        = 22
	fieldDescription = 23
	fieldTags        = 30
)

func stringField(row []json.RawMessage, idx int) (string, error) {
	if idx >= len(row) {
		return "", fmt.Errorf("row has %d fields, need %d", len(row), idx+1)
	}
	if string(row[idx]) == "null" {
		return "", nil
	}
	var s string
	err := json.Unmarshal(row[idx], &s)
	if err != nil {
		return "", fmt.Errorf("field %d: %w", idx, err)
	}
	return strings.TrimSpace(s), nil
}
