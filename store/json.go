package store

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm/clause"

	"github.com/oxhq/queryalgebra/codec"
)

// marshalJSON and unmarshalJSON bridge codec.Wire (a plain
// map[string]any) to datatypes.JSON. The canonical codec already
// produces a JSON-compatible tree; encoding/json is the teacher's own
// choice for datatypes.JSON's underlying representation, so no
// separate serialization library is introduced here (see DESIGN.md).
func marshalJSON(w codec.Wire) (datatypes.JSON, error) {
	b, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("store: marshal: %w", err)
	}
	return datatypes.JSON(b), nil
}

func unmarshalJSON(raw datatypes.JSON) (codec.Wire, error) {
	var w codec.Wire
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("store: unmarshal: %w", err)
	}
	return w, nil
}

// onConflictUpdate upserts a SavedQuery by its unique name, refreshing
// the stored query body and timestamp.
func onConflictUpdate() clause.OnConflict {
	return clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"record_type", "condition", "modification", "updated_at"}),
	}
}
