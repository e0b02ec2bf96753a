package models

// Categories are the research-forum taxonomy, communities the patient one.
// Both are seeded reference data; nothing in the API mutates them.

type Category struct {
	ID int `db:"id"`

	Slug  string `db:"slug"`
	Name  string `db:"name"`
	Blurb string `db:"blurb"`
	Sort  int    `db:"sort"`
}

type Community struct {
	ID int `db:"id"`

	Slug  string `db:"slug"`
	Name  string `db:"name"`
	Blurb string `db:"blurb"`
	Sort  int    `db:"sort"`
}

type CommunitySubcategory struct {
	ID          int `db:"id"`
	CommunityID int `db:"community_id"`

	Slug string `db:"slug"`
	Name string `db:"name"`
	Sort int    `db:"sort"`
}
