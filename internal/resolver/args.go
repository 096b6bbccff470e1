package resolver

import (
	"github.com/go-viper/mapstructure/v2"
	"github.com/google/uuid"

	"github.com/hanpama/membergraph/internal/model"
)

// idArg returns args[name] after checking it is a UUID.
func idArg(args map[string]any, name string) (string, error) {
	s, ok := args[name].(string)
	if !ok {
		return "", badInput("argument %q must be a UUID string", name)
	}
	if err := checkUUID(name, s); err != nil {
		return "", err
	}
	return s, nil
}

func checkUUID(name, s string) error {
	if _, err := uuid.Parse(s); err != nil {
		return badInput("%s: %q is not a valid UUID", name, s)
	}
	return nil
}

func memberTypeArg(args map[string]any, name string) (model.MemberTypeID, error) {
	s, _ := args[name].(string)
	id, err := model.ParseMemberTypeID(s)
	if err != nil {
		return "", badInput("argument %q: %v", name, err)
	}
	return id, nil
}

// decodeInput decodes the input object args[name] into out. Fields the
// client left out stay at their zero value, or nil for pointers.
func decodeInput(args map[string]any, name string, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      out,
		ErrorUnused: true,
		TagName:     "mapstructure",
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(args[name]); err != nil {
		return badInput("argument %q: %v", name, err)
	}
	return nil
}
