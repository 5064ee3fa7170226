package rest

import "github.com/kasuganosora/friendsvc/model"

// userView is the short form used in listings.
type userView struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
}

type friendView struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// userDetail is a user with its items and friends.
type userDetail struct {
	userView
	Items   []model.Item `json:"items"`
	Friends []friendView `json:"friends"`
}

func newUserView(u *model.User) userView {
	v := userView{ID: u.ID, Email: u.Email}
	if u.IsActive != nil {
		v.IsActive = *u.IsActive
	}
	return v
}

func newUserViews(users []model.User) []userView {
	out := make([]userView, len(users))
	for i := range users {
		out[i] = newUserView(&users[i])
	}
	return out
}

func newUserDetail(u *model.User, friends []model.User) userDetail {
	d := userDetail{
		userView: newUserView(u),
		Items:    u.Items,
		Friends:  make([]friendView, len(friends)),
	}
	if d.Items == nil {
		d.Items = []model.Item{}
	}
	for i, f := range friends {
		d.Friends[i] = friendView{ID: f.ID, Email: f.Email}
	}
	return d
}
