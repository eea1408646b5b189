package model

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

type AnnouncementFile struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	MimeType string `json:"mime_type,omitempty"`
}

type AnnouncementLink struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
	Image string `json:"image,omitempty"`
}

type Video struct {
	VideoID      string `json:"video_id"`
	Title        string `json:"title,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

func (v Video) URL() string {
	return "https://www.youtube.com/watch?v=" + v.VideoID
}

// Announcement is a post on the management's board. Content is HTML.
type Announcement struct {
	ID        int64              `json:"id"`
	Content   string             `json:"content"`
	IsGlobal  bool               `json:"is_global"`
	CreatedAt string             `json:"created_at"`
	User      *UserRef           `json:"user,omitempty"`
	Files     []AnnouncementFile `json:"files,omitempty"`
	Links     []AnnouncementLink `json:"links,omitempty"`
	Videos    []Video            `json:"youtube_videos,omitempty"`
}

// AnnouncementPage is one page of announcements in server order.
type AnnouncementPage struct {
	Items       []*Announcement
	CurrentPage int
	LastPage    int
}

func (a *Announcement) Author() string {
	if a.User == nil {
		return "unknown"
	}
	if name := strings.TrimSpace(a.User.Name + " " + a.User.LastName); name != "" {
		return name
	}
	return "unknown"
}

func (a *Announcement) Scope() string {
	if a.IsGlobal {
		return "global"
	}
	return "group"
}

var (
	textPolicy = bluemonday.StrictPolicy()
	blockBreak = regexp.MustCompile(`(?i)<br\s*/?>|</p>|</li>|</ul>|</ol>`)
	blankRuns  = regexp.MustCompile(`\n{3,}`)
)

// Text renders the HTML content as plain text, one line per paragraph,
// line break or list item.
func (a *Announcement) Text() string {
	s := blockBreak.ReplaceAllString(a.Content, "\n")
	s = html.UnescapeString(textPolicy.Sanitize(s))
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(blankRuns.ReplaceAllString(strings.Join(lines, "\n"), "\n\n"))
}
