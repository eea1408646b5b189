package api

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/bytedance/sonic"

	"github.com/jeryldev/sprintboard/internal/model"
)

// Sprints lists the group's sprints. The endpoint answers with a bare array;
// an items envelope is accepted as well.
func (c *Client) Sprints(ctx context.Context, groupID int64) ([]*model.Sprint, error) {
	const path = "/sprints"
	q := url.Values{"group_id": {strconv.FormatInt(groupID, 10)}}
	raw, err := c.do(ctx, http.MethodGet, path, q, nil)
	if err != nil {
		return nil, err
	}

	var sprints []*model.Sprint
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '[' {
		if err := sonic.Unmarshal(trimmed, &sprints); err != nil {
			return nil, malformed(http.MethodGet, path, "decoding body: %v", err)
		}
	} else {
		data, err := decodeEnvelope[itemsData[*model.Sprint]](http.MethodGet, path, raw)
		if err != nil {
			return nil, err
		}
		if data.Items == nil {
			return nil, malformed(http.MethodGet, path, "missing data.items")
		}
		sprints = *data.Items
	}

	out := make([]*model.Sprint, 0, len(sprints))
	for _, s := range sprints {
		if s != nil {
			out = append(out, s)
		}
	}
	return out, nil
}

// TeamMembers returns the group's representative followed by its members.
func (c *Client) TeamMembers(ctx context.Context, groupID int64) ([]*model.TeamMember, error) {
	const path = "/groups/details"
	q := url.Values{"group_id": {strconv.FormatInt(groupID, 10)}}
	raw, err := c.do(ctx, http.MethodGet, path, q, nil)
	if err != nil {
		return nil, err
	}
	data, err := decodeEnvelope[groupData](http.MethodGet, path, raw)
	if err != nil {
		return nil, err
	}
	if data.Group == nil {
		return nil, malformed(http.MethodGet, path, "missing data.group")
	}

	seen := make(map[int64]bool)
	var members []*model.TeamMember
	add := func(m *model.TeamMember) {
		if m == nil || seen[m.ID] {
			return
		}
		seen[m.ID] = true
		members = append(members, m)
	}
	add(data.Group.Representative)
	for _, m := range data.Group.Members {
		add(m)
	}
	return members, nil
}

func (c *Client) Me(ctx context.Context) (*model.User, error) {
	const path = "/me"
	raw, err := c.do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	data, err := decodeEnvelope[itemData[model.User]](http.MethodGet, path, raw)
	if err != nil {
		return nil, err
	}
	if data.Item == nil {
		return nil, malformed(http.MethodGet, path, "missing data.item")
	}
	return data.Item, nil
}
