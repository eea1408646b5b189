package api

import (
	"bytes"
	"sort"
	"strconv"

	"github.com/bytedance/sonic"

	"github.com/jeryldev/sprintboard/internal/model"
)

// envelope is the platform's standard response wrapper. Pointer fields let
// decode tell a missing field from a zero one.
type envelope[T any] struct {
	Success *bool  `json:"success"`
	Message string `json:"message,omitempty"`
	Data    *T     `json:"data"`
}

type itemsData[T any] struct {
	Items *[]T `json:"items"`
}

type itemData[T any] struct {
	Item *T `json:"item"`
}

type groupData struct {
	Group *groupDetails `json:"group"`
}

type groupDetails struct {
	ID             int64                        `json:"id,omitempty"`
	Name           string                       `json:"name,omitempty"`
	Representative *model.TeamMember            `json:"representative"`
	Members        keyedList[*model.TeamMember] `json:"members"`
}

// keyedList accepts a list either as a JSON array or as an object keyed by
// id. Object entries are ordered by numeric key.
type keyedList[T any] []T

func (l *keyedList[T]) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*l = nil
		return nil
	}
	if trimmed[0] == '[' {
		var list []T
		if err := sonic.Unmarshal(trimmed, &list); err != nil {
			return err
		}
		*l = list
		return nil
	}

	var byKey map[string]T
	if err := sonic.Unmarshal(trimmed, &byKey); err != nil {
		return err
	}
	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, aErr := strconv.ParseInt(keys[i], 10, 64)
		b, bErr := strconv.ParseInt(keys[j], 10, 64)
		if aErr == nil && bErr == nil {
			return a < b
		}
		return keys[i] < keys[j]
	})
	list := make([]T, 0, len(keys))
	for _, k := range keys {
		list = append(list, byKey[k])
	}
	*l = list
	return nil
}

// decodeEnvelope checks success and data presence and returns data.
func decodeEnvelope[T any](method, path string, raw []byte) (*T, error) {
	var env envelope[T]
	if err := sonic.Unmarshal(raw, &env); err != nil {
		return nil, malformed(method, path, "decoding body: %v", err)
	}
	if env.Success == nil {
		return nil, malformed(method, path, "missing success flag")
	}
	if !*env.Success {
		return nil, unsuccessful(method, path, env.Message)
	}
	if env.Data == nil {
		return nil, malformed(method, path, "missing data")
	}
	return env.Data, nil
}

func unsuccessful(method, path, msg string) error {
	if msg == "" {
		msg = "request was not successful"
	}
	return &Error{Method: method, Path: path, Message: msg}
}
