package models

import (
	"fmt"
	"strings"
	"time"
)

// MaxContentLength caps a post's content, in runes.
const MaxContentLength = 280

type Post struct {
	ID        string
	AuthorID  string
	Author    string
	Content   string
	CreatedAt time.Time
}

type MarkType string

const (
	MarkShitpost       MarkType = "shitpost"
	MarkSpark          MarkType = "spark"
	MarkGonnaImplement MarkType = "gonna_implement"
	MarkIgnored        MarkType = "ignored"
)

// VisibleMarkTypes are the reactions shown to users, in display order.
// MarkIgnored only hides a post from the feed.
var VisibleMarkTypes = []MarkType{MarkShitpost, MarkSpark, MarkGonnaImplement}

var markTitles = map[MarkType]string{
	MarkShitpost:       "Shitposts",
	MarkSpark:          "Sparks",
	MarkGonnaImplement: "Gonna Implement",
	MarkIgnored:        "Ignored",
}

// Title is the group heading for the mark type.
func (m MarkType) Title() string {
	if t, ok := markTitles[m]; ok {
		return t
	}
	return string(m)
}

// ParseMarkType accepts the wire names, case-insensitively.
func ParseMarkType(s string) (MarkType, error) {
	m := MarkType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := markTitles[m]; !ok {
		return "", fmt.Errorf("unknown mark type %q", s)
	}
	return m, nil
}

type Mark struct {
	PostID    string
	UserID    string
	Type      MarkType
	CreatedAt time.Time
}

// MarkedPost is a post together with one of the caller's marks on it.
type MarkedPost struct {
	Post
	MarkType MarkType
	MarkedAt time.Time
}

// MarkGroup is one titled section of the marked-by-me view.
type MarkGroup struct {
	Type  MarkType
	Title string
	Posts []MarkedPost
}

// MarkCounts holds the number of marks per type for one post.
type MarkCounts map[MarkType]int
