package offline

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Keys stamped onto every queued sale. They overwrite caller fields of the
// same name.
const (
	fieldOfflineID = "offlineId"
	fieldCreatedAt = "createdAt"
	fieldSynced    = "synced"
)

var errNotObject = errors.New("offline: sale must be a JSON object")

// PendingSale is a sale captured on the device and not yet acknowledged by
// the server. Fields holds the caller's sale as given; it is encoded flat,
// next to offlineId, createdAt and synced.
type PendingSale struct {
	OfflineID string
	CreatedAt string
	Synced    bool
	Fields    map[string]json.RawMessage
}

func (p PendingSale) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(p.Fields)+3)
	for k, v := range p.Fields {
		out[k] = v
	}
	var err error
	if out[fieldOfflineID], err = json.Marshal(p.OfflineID); err != nil {
		return nil, err
	}
	if out[fieldCreatedAt], err = json.Marshal(p.CreatedAt); err != nil {
		return nil, err
	}
	if out[fieldSynced], err = json.Marshal(p.Synced); err != nil {
		return nil, err
	}
	return json.Marshal(out)
}

func (p *PendingSale) UnmarshalJSON(data []byte) error {
	fields, err := objectFields(data)
	if err != nil {
		return err
	}
	*p = PendingSale{}
	if raw, ok := fields[fieldOfflineID]; ok {
		if err := json.Unmarshal(raw, &p.OfflineID); err != nil {
			return fmt.Errorf("offline: %s: %w", fieldOfflineID, err)
		}
	}
	if raw, ok := fields[fieldCreatedAt]; ok {
		if err := json.Unmarshal(raw, &p.CreatedAt); err != nil {
			return fmt.Errorf("offline: %s: %w", fieldCreatedAt, err)
		}
	}
	if raw, ok := fields[fieldSynced]; ok {
		if err := json.Unmarshal(raw, &p.Synced); err != nil {
			return fmt.Errorf("offline: %s: %w", fieldSynced, err)
		}
	}
	delete(fields, fieldOfflineID)
	delete(fields, fieldCreatedAt)
	delete(fields, fieldSynced)
	p.Fields = fields
	return nil
}

// objectFields splits a JSON object into its members. Anything other than an
// object (including null) is rejected.
func objectFields(data []byte) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", errNotObject, err)
	}
	if fields == nil {
		return nil, errNotObject
	}
	return fields, nil
}
