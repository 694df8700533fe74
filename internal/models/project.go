package models

import "encoding/json"

// Project is a portfolio entry. Media items are free-form objects supplied
// by the admin UI (type, url, caption, ...).
type Project struct {
	ID              int              `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Title           string           `json:"title" gorm:"type:varchar(200)"`
	Description     string           `json:"description" gorm:"type:varchar(500)"`
	Category        string           `json:"category" gorm:"type:varchar(100)"`
	Technologies    []string         `json:"technologies,omitempty" gorm:"serializer:json"`
	Programming     []string         `json:"programming,omitempty" gorm:"serializer:json"`
	Features        []string         `json:"features,omitempty" gorm:"serializer:json"`
	LongDescription string           `json:"longDescription,omitempty" gorm:"type:text"`
	Challenges      string           `json:"challenges,omitempty" gorm:"type:text"`
	Results         string           `json:"results,omitempty" gorm:"type:text"`
	Image           string           `json:"image,omitempty" gorm:"type:varchar(500)"`
	Video           *string          `json:"video" gorm:"type:varchar(500)"`
	Media           []map[string]any `json:"media,omitempty" gorm:"serializer:json"`
}

// OptionalString tells an absent JSON field apart from an explicit null.
// Set is true whenever the key was present; Value is nil for null.
type OptionalString struct {
	Set   bool
	Value *string
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// ProjectInput carries the fields of a create/update request. Nil fields
// are left untouched on update; a null video clears it.
type ProjectInput struct {
	ID              *int              `json:"id" validate:"omitempty,min=1"`
	Title           *string           `json:"title" validate:"required,min=2,max=200"`
	Description     *string           `json:"description" validate:"required,min=2,max=500"`
	Category        *string           `json:"category" validate:"required,min=2,max=100"`
	Technologies    *[]string         `json:"technologies" validate:"omitempty,max=50"`
	Programming     *[]string         `json:"programming" validate:"omitempty,max=50"`
	Features        *[]string         `json:"features" validate:"omitempty,max=50"`
	LongDescription *string           `json:"longDescription" validate:"omitempty,max=5000"`
	Challenges      *string           `json:"challenges" validate:"omitempty,max=5000"`
	Results         *string           `json:"results" validate:"omitempty,max=5000"`
	Image           *string           `json:"image" validate:"omitempty,max=500"`
	Video           OptionalString    `json:"video" validate:"omitempty,max=500"`
	Media           *[]map[string]any `json:"media" validate:"omitempty,max=30"`
}

// Apply copies every provided field of the input onto p.
func (in *ProjectInput) Apply(p *Project) {
	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Category != nil {
		p.Category = *in.Category
	}
	if in.Technologies != nil {
		p.Technologies = *in.Technologies
	}
	if in.Programming != nil {
		p.Programming = *in.Programming
	}
	if in.Features != nil {
		p.Features = *in.Features
	}
	if in.LongDescription != nil {
		p.LongDescription = *in.LongDescription
	}
	if in.Challenges != nil {
		p.Challenges = *in.Challenges
	}
	if in.Results != nil {
		p.Results = *in.Results
	}
	if in.Image != nil {
		p.Image = *in.Image
	}
	if in.Video.Set {
		p.Video = in.Video.Value
	}
	if in.Media != nil {
		p.Media = *in.Media
	}
}
