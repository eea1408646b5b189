package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/bytedance/sonic"

	"github.com/jeryldev/sprintboard/internal/model"
)

// pagedBody is the paginator shape of the announcements endpoint. It has
// no data wrapper object and success may be absent.
type pagedBody[T any] struct {
	Success     *bool         `json:"success"`
	Message     string        `json:"message"`
	Data        *keyedList[T] `json:"data"`
	CurrentPage int           `json:"current_page"`
	LastPage    int           `json:"last_page"`
}

type templatesData struct {
	Templates *[]*model.EvaluationTemplate `json:"templates"`
}

// Announcements returns one page of the management's announcements. Pages
// start at 1.
func (c *Client) Announcements(ctx context.Context, managementID int64, page int) (*model.AnnouncementPage, error) {
	if page < 1 {
		page = 1
	}
	path := "/management/" + strconv.FormatInt(managementID, 10) + "/announcements"
	q := url.Values{"page": {strconv.Itoa(page)}}
	raw, err := c.do(ctx, http.MethodGet, path, q, nil)
	if err != nil {
		return nil, err
	}

	var body pagedBody[*model.Announcement]
	if err := sonic.Unmarshal(raw, &body); err != nil {
		return nil, malformed(http.MethodGet, path, "decoding body: %v", err)
	}
	if body.Success != nil && !*body.Success {
		return nil, unsuccessful(http.MethodGet, path, body.Message)
	}
	if body.Data == nil {
		return nil, malformed(http.MethodGet, path, "missing data")
	}

	res := &model.AnnouncementPage{CurrentPage: body.CurrentPage, LastPage: body.LastPage}
	if res.CurrentPage < 1 {
		res.CurrentPage = page
	}
	if res.LastPage < res.CurrentPage {
		res.LastPage = res.CurrentPage
	}
	for _, a := range *body.Data {
		if a != nil {
			res.Items = append(res.Items, a)
		}
	}
	return res, nil
}

// EvaluationTemplates lists the rubrics configured for the management.
func (c *Client) EvaluationTemplates(ctx context.Context, managementID int64) ([]*model.EvaluationTemplate, error) {
	const path = "/evaluation-templates"
	q := url.Values{"management_id": {strconv.FormatInt(managementID, 10)}}
	raw, err := c.do(ctx, http.MethodGet, path, q, nil)
	if err != nil {
		return nil, err
	}

	var body struct {
		Success *bool          `json:"success"`
		Message string         `json:"message"`
		Data    *templatesData `json:"data"`
	}
	if err := sonic.Unmarshal(raw, &body); err != nil {
		return nil, malformed(http.MethodGet, path, "decoding body: %v", err)
	}
	if body.Success != nil && !*body.Success {
		return nil, unsuccessful(http.MethodGet, path, body.Message)
	}
	if body.Data == nil || body.Data.Templates == nil {
		return nil, malformed(http.MethodGet, path, "missing data.templates")
	}

	out := make([]*model.EvaluationTemplate, 0, len(*body.Data.Templates))
	for _, t := range *body.Data.Templates {
		if t != nil {
			out = append(out, t)
		}
	}
	return out, nil
}

// ProposalStatus reports the signed-in user's group proposal submission.
func (c *Client) ProposalStatus(ctx context.Context) (*model.ProposalStatus, error) {
	const path = "/proposal-submission"
	raw, err := c.do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeEnvelope[model.ProposalStatus](http.MethodGet, path, raw)
}
