package models

import (
	"encoding/json"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar day encoded as YYYY-MM-DD in JSON and YAML.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) MarshalText() ([]byte, error) {
	if d.IsZero() {
		return []byte{}, nil
	}
	return []byte(d.Format(dateLayout)), nil
}

func (d *Date) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(dateLayout, string(text))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// MarshalJSON overrides the one promoted from time.Time.
func (d Date) MarshalJSON() ([]byte, error) {
	text, err := d.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

type Book struct {
	ID          int      `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Author      string   `json:"author" yaml:"author"`
	Price       float64  `json:"price" yaml:"price"`
	CoverImage  string   `json:"coverImage" yaml:"coverImage"`
	Description string   `json:"description" yaml:"description"`
	Genre       []string `json:"genre" yaml:"genre"`
	PublishDate Date     `json:"publishDate" yaml:"publishDate"`
	ISBN        string   `json:"isbn" yaml:"isbn"`
	Rating      float64  `json:"rating" yaml:"rating"`
	InStock     bool     `json:"inStock" yaml:"inStock"`
}

// PrimaryGenre is the first genre tag, or "" for an untagged book.
func (b Book) PrimaryGenre() string {
	if len(b.Genre) == 0 {
		return ""
	}
	return b.Genre[0]
}

type User struct {
	ID        int    `json:"id" yaml:"id"`
	Email     string `json:"email" yaml:"email"`
	FirstName string `json:"firstName" yaml:"firstName"`
	LastName  string `json:"lastName" yaml:"lastName"`
	Avatar    string `json:"avatar,omitempty" yaml:"avatar"`
	Country   string `json:"country,omitempty" yaml:"country"`
	City      string `json:"city,omitempty" yaml:"city"`
	Age       int    `json:"age,omitempty" yaml:"age"`
	PassHash  string `json:"-" yaml:"-"`
}

func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// ProfileUpdate carries the mutable profile fields; nil leaves a field as is.
type ProfileUpdate struct {
	FirstName *string `json:"firstName" validate:"omitempty,min=1,max=64"`
	LastName  *string `json:"lastName" validate:"omitempty,min=1,max=64"`
	Avatar    *string `json:"avatar" validate:"omitempty,url"`
	Country   *string `json:"country" validate:"omitempty,max=64"`
	City      *string `json:"city" validate:"omitempty,max=64"`
	Age       *int    `json:"age" validate:"omitempty,gte=0,lte=150"`
}

func (p ProfileUpdate) Apply(u User) User {
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Avatar != nil {
		u.Avatar = *p.Avatar
	}
	if p.Country != nil {
		u.Country = *p.Country
	}
	if p.City != nil {
		u.City = *p.City
	}
	if p.Age != nil {
		u.Age = *p.Age
	}
	return u
}

type Review struct {
	ID         int       `json:"id" yaml:"id"`
	BookID     int       `json:"bookId" yaml:"bookId"`
	UserID     int       `json:"userId" yaml:"userId"`
	UserName   string    `json:"userName" yaml:"userName"`
	UserAvatar string    `json:"userAvatar,omitempty" yaml:"userAvatar"`
	Rating     int       `json:"rating" yaml:"rating"`
	Comment    string    `json:"comment" yaml:"comment"`
	CreatedAt  time.Time `json:"createdAt" yaml:"createdAt"`
}

// ReviewUpdate carries the fields an author may change on a review.
type ReviewUpdate struct {
	Rating  *int    `json:"rating" validate:"omitempty,gte=1,lte=5"`
	Comment *string `json:"comment" validate:"omitempty,min=1,max=2000"`
}

func (p ReviewUpdate) Apply(r Review) Review {
	if p.Rating != nil {
		r.Rating = *p.Rating
	}
	if p.Comment != nil {
		r.Comment = *p.Comment
	}
	return r
}

type CartItem struct {
	Book     Book `json:"book"`
	Quantity int  `json:"quantity"`
}

// Account is a user of the session demo server, keyed by username.
type Account struct {
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	PassHash  string     `json:"-"`
	CreatedAt time.Time  `json:"createdAt"`
	LastLogin *time.Time `json:"lastLogin"`
}

// SessionUser is what a server-side session remembers about its owner.
type SessionUser struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}
