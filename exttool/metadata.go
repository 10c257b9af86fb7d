package exttool

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gobeaver/filesniff/edam"
	"github.com/gobeaver/filesniff/internal/logger"
)

// Comment keys read from a descriptor, matched case-insensitively:
//
//	# EDAM_ID=format_2573
//	# LABEL=SAM
const (
	KeyEDAMID = "EDAM_ID"
	KeyLabel  = "LABEL"
)

// ErrNoMetadata is returned when a descriptor declares neither key.
var ErrNoMetadata = errors.New("exttool: descriptor declares neither EDAM_ID nor LABEL")

// Metadata is the format a descriptor reports on success.
type Metadata struct {
	ID    string
	Label string
}

// ParseMetadata reads EDAM_ID and LABEL from the comment lines of a
// descriptor. Malformed comment lines are ignored.
func ParseMetadata(r io.Reader) (Metadata, error) {
	var m Metadata
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := parseComment(line)
		if !ok {
			continue
		}
		switch strings.ToUpper(key) {
		case KeyEDAMID:
			m.ID = value
		case KeyLabel:
			m.Label = value
		}
	}
	if err := sc.Err(); err != nil {
		return Metadata{}, fmt.Errorf("exttool: read descriptor: %w", err)
	}
	return m, nil
}

// parseComment splits "# KEY = value" and unquotes the value.
func parseComment(line string) (key, value string, ok bool) {
	body := strings.TrimSpace(strings.TrimLeft(line, "#"))
	parts := strings.Split(body, "=")
	if len(parts) != 2 {
		return "", "", false
	}
	key = strings.TrimSpace(parts[0])
	value = strings.TrimSpace(parts[1])
	if len(value) > 1 && (value[0] == '"' || value[0] == '\'') && value[len(value)-1] == value[0] {
		value = value[1 : len(value)-1]
	}
	return key, value, key != ""
}

// Reconcile checks the declared pair against the vocabulary:
//   - both set but not a known pair: the label is dropped with a warning;
//   - only a label: the id is looked up, a label outside the vocabulary is
//     kept as a custom name;
//   - only an id: kept as is;
//   - neither: ErrNoMetadata.
func (m Metadata) Reconcile(v *edam.Vocabulary, descriptor string, log logger.Logger) (Metadata, error) {
	switch {
	case m.ID != "" && m.Label != "":
		if !v.Correspond(m.ID, m.Label) {
			log.Warn("EDAM_ID and LABEL pair is not in the EDAM table; ignoring LABEL",
				"edam_id", m.ID, "label", m.Label, "descriptor", descriptor)
			m.Label = ""
		}
	case m.Label != "":
		if id, ok := v.IDForLabel(m.Label); ok {
			log.Debug("found EDAM_ID for label", "edam_id", id, "label", m.Label, "descriptor", descriptor)
			m.ID = id
		} else {
			log.Info("label is not in the EDAM table; treating it as a custom name", "label", m.Label, "descriptor", descriptor)
		}
	case m.ID != "":
	default:
		return Metadata{}, fmt.Errorf("%w: %s", ErrNoMetadata, descriptor)
	}
	if m.ID != "" {
		m.ID = edam.Normalize(m.ID)
	}
	return m, nil
}
