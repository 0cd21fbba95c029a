package view

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"guestbook/pkg/domain"
)

// Text holds every user-visible string on the page.
type Text struct {
	Title              string
	Intro              string
	NamePlaceholder    string
	MessagePlaceholder string
	Submit             string
	NameLabel          string
	Posted             string
	Delete             string
	ConfirmDelete      string
	Empty              string
	TooManyRequests    string
	StoreUnavailable   string
	InvalidName        string
	InvalidMessage     string
}

// Locale is a negotiated language and its strings.
type Locale struct {
	Lang string
	Text Text
}

var supported = []language.Tag{language.English, language.SimplifiedChinese}

var catalog = map[language.Tag]Text{
	language.English: {
		Title:              "My Guestbook 😊",
		Intro:              "Write something nice!",
		NamePlaceholder:    "Name",
		MessagePlaceholder: "Message",
		Submit:             "Submit",
		NameLabel:          "Name",
		Posted:             "Posted",
		Delete:             "Delete",
		ConfirmDelete:      "Delete this message?",
		Empty:              "No messages yet. Be the first!",
		TooManyRequests:    "Too many messages, please wait a minute.",
		StoreUnavailable:   "The guestbook is unavailable right now.",
		InvalidName:        "Name is required and may have at most %d characters.",
		InvalidMessage:     "Message is required and may have at most %d characters.",
	},
	language.SimplifiedChinese: {
		Title:              "我的留言簿 😊",
		Intro:              "写点好听的吧！",
		NamePlaceholder:    "名字",
		MessagePlaceholder: "留言",
		Submit:             "提交",
		NameLabel:          "名字",
		Posted:             "发布于",
		Delete:             "删除",
		ConfirmDelete:      "确定要删除这条留言吗？",
		Empty:              "还没有留言，来做第一个吧！",
		TooManyRequests:    "提交太频繁，请稍后再试。",
		StoreUnavailable:   "留言簿暂时不可用。",
		InvalidName:        "名字为必填项，且最多 %d 个字符。",
		InvalidMessage:     "留言为必填项，且最多 %d 个字符。",
	},
}

// Localizer picks a Locale from Accept-Language.
type Localizer struct {
	matcher language.Matcher
	def     language.Tag
}

// NewLocalizer builds a localizer; an unsupported or empty defaultLang falls
// back to English.
func NewLocalizer(defaultLang string) *Localizer {
	l := &Localizer{matcher: language.NewMatcher(supported), def: language.English}
	if tag, err := language.Parse(strings.TrimSpace(defaultLang)); err == nil {
		if _, idx, conf := l.matcher.Match(tag); conf != language.No {
			l.def = supported[idx]
		}
	}
	return l
}

// Match negotiates against the header; no usable preference yields the default.
func (l *Localizer) Match(acceptLanguage string) Locale {
	tag := l.def
	if prefs, _, err := language.ParseAcceptLanguage(acceptLanguage); err == nil && len(prefs) > 0 {
		if _, idx, conf := l.matcher.Match(prefs...); conf != language.No {
			tag = supported[idx]
		}
	}
	return Locale{Lang: tag.String(), Text: catalog[tag]}
}

// ValidationMessage turns a validation error into a localized sentence.
func (loc Locale) ValidationMessage(err error) string {
	var verr *domain.ValidationError
	if errors.As(err, &verr) && verr.Field == "message" {
		return fmt.Sprintf(loc.Text.InvalidMessage, domain.MaxMessageChars)
	}
	return fmt.Sprintf(loc.Text.InvalidName, domain.MaxNameChars)
}
