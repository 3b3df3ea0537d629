package handlers

import (
	"time"

	"github.com/oksasatya/communet/internal/application"
	"github.com/oksasatya/communet/internal/application/query"
	"github.com/oksasatya/communet/internal/domain/entity"
)

type profileView struct {
	OID         string `json:"oid"`
	DisplayName string `json:"display_name"`
	Username    string `json:"username,omitempty"`
	Email       string `json:"email,omitempty"`
	Avatar      string `json:"avatar"`
}

func newProfileView(p *entity.Profile) profileView {
	v := profileView{OID: p.OID, DisplayName: p.DisplayName.String(), Avatar: p.Avatar}
	if p.Credentials != nil {
		v.Username = p.Credentials.Username.String()
		v.Email = p.Credentials.Email.String()
	}
	return v
}

func newProfileViews(ps []*entity.Profile) []profileView {
	out := make([]profileView, 0, len(ps))
	for _, p := range ps {
		out = append(out, newProfileView(p))
	}
	return out
}

type channelView struct {
	OID         string  `json:"oid"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Avatar      *string `json:"avatar"`
}

func newChannelView(ch *entity.Channel) channelView {
	return channelView{OID: ch.OID, Name: ch.Name.String(), Description: ch.Description, Avatar: ch.Avatar}
}

type channelPageView struct {
	Count  int           `json:"count"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
	Items  []channelView `json:"items"`
}

func newChannelPageView(page query.ChannelPage) channelPageView {
	items := make([]channelView, 0, len(page.Items))
	for _, ch := range page.Items {
		items = append(items, newChannelView(ch))
	}
	return channelPageView{Count: page.Count, Limit: page.Limit, Offset: page.Offset, Items: items}
}

func newSearchViews(docs []application.ChannelDocument) []channelView {
	out := make([]channelView, 0, len(docs))
	for _, d := range docs {
		out = append(out, channelView{OID: d.ID, Name: d.Name, Description: d.Description, Avatar: d.Avatar})
	}
	return out
}

type tokensView struct {
	AccessToken      string    `json:"access_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshToken     string    `json:"refresh_token"`
	RefreshExpiresIn int64     `json:"refresh_expires_in"`
}

func newTokensView(a entity.AuthData) tokensView {
	return tokensView{
		AccessToken:      a.AccessToken,
		AccessExpiresAt:  a.AccessExpires,
		RefreshToken:     a.RefreshToken,
		RefreshExpiresIn: int64(a.RefreshExpires.Seconds()),
	}
}
