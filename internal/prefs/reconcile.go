package prefs

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dukerupert/notiprefs/internal/auth"
	"github.com/dukerupert/notiprefs/internal/model"
)

// PreferenceUpdate is one record of a bulk update. The target row is found by
// notification type name, never by id.
//
// Decoding is lenient: bad field values are remembered and reported when the
// record is reached, so errors surface in input order.
type PreferenceUpdate struct {
	TypeName  string
	Frequency *string
	Email     *bool
	Push      *bool
	SMS       *bool

	fieldErrs FieldErrors
}

func (u *PreferenceUpdate) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return fmt.Errorf("preference update must be an object")
	}

	*u = PreferenceUpdate{fieldErrs: FieldErrors{}}

	if nt, ok := raw["notification_type"]; ok {
		var typ map[string]json.RawMessage
		if json.Unmarshal(nt, &typ) == nil {
			var name string
			if n, ok := typ["name"]; ok && json.Unmarshal(n, &name) == nil {
				u.TypeName = name
			}
		}
	}

	if f, ok := raw["frequency"]; ok {
		var s string
		switch {
		case isNull(f):
			u.fieldErrs.add("frequency", msgNotNull)
		case json.Unmarshal(f, &s) != nil:
			u.fieldErrs.add("frequency", invalidChoice(string(f)))
		default:
			u.Frequency = &s
		}
	}

	u.Email = u.decodeBool(raw, "email")
	u.Push = u.decodeBool(raw, "push")
	u.SMS = u.decodeBool(raw, "sms")
	return nil
}

func (u *PreferenceUpdate) decodeBool(raw map[string]json.RawMessage, field string) *bool {
	v, ok := raw[field]
	if !ok {
		return nil
	}
	if isNull(v) {
		u.fieldErrs.add(field, msgNotNull)
		return nil
	}
	var b bool
	if err := json.Unmarshal(v, &b); err != nil {
		u.fieldErrs.add(field, msgNotBoolean)
		return nil
	}
	return &b
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

// patch validates the record's field values and converts them.
func (u PreferenceUpdate) patch() (model.PreferencePatch, error) {
	fields := FieldErrors{}
	for k, msgs := range u.fieldErrs {
		fields[k] = append(fields[k], msgs...)
	}

	var p model.PreferencePatch
	if u.Frequency != nil {
		f := model.Frequency(*u.Frequency)
		if f.Valid() {
			p.Frequency = &f
		} else {
			fields.add("frequency", invalidChoice(*u.Frequency))
		}
	}
	p.Email, p.Push, p.SMS = u.Email, u.Push, u.SMS

	if len(fields) > 0 {
		return p, &ValidationError{Message: "invalid preference", Fields: fields}
	}
	return p, nil
}

// ListPreferences returns the caller's own preference rows.
func (s *Service) ListPreferences(ctx context.Context, caller auth.AuthContext) ([]model.NotificationPreference, error) {
	if caller.UserID == 0 {
		return nil, ErrForbidden
	}
	prefs, err := s.prefs.ListByUser(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	if prefs == nil {
		prefs = []model.NotificationPreference{}
	}
	return prefs, nil
}

// UpdatePreferences applies updates to the caller's rows in input order.
// The batch is atomic: the first failing record aborts the request and no
// row changes.
func (s *Service) UpdatePreferences(ctx context.Context, caller auth.AuthContext, updates []PreferenceUpdate) error {
	if caller.UserID == 0 {
		return ErrForbidden
	}

	var changed []int64
	err := s.db.InTx(ctx, func(tx *sql.Tx) error {
		prefs := s.prefs.WithTx(tx)
		for _, u := range updates {
			if u.TypeName == "" {
				return newFieldError("notification_type", msgInvalidType)
			}

			row, err := prefs.GetByUserAndTypeName(ctx, caller.UserID, u.TypeName)
			if err != nil {
				return err
			}
			if row == nil {
				return &NotFoundError{
					Detail: fmt.Sprintf("Notification type '%s' not found for user %s", u.TypeName, caller.Username),
				}
			}

			patch, err := u.patch()
			if err != nil {
				return err
			}
			patch.Apply(row)
			if err := prefs.Update(ctx, row); err != nil {
				return err
			}
			changed = append(changed, row.ID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if len(changed) > 0 {
		s.logger.Debug("preferences updated", "user_id", caller.UserID, "count", len(changed))
	}
	for _, id := range changed {
		s.pub.Publish(Event{Entity: EntityPreference, Action: ActionUpdated, ID: id, UserID: caller.UserID})
	}
	return nil
}
