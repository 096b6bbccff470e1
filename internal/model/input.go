package model

// Mutation payloads. Pointer fields in the Change* inputs are optional; a nil
// pointer leaves the column untouched.

type CreateUserInput struct {
	Name    string  `mapstructure:"name"`
	Balance float64 `mapstructure:"balance"`
}

type ChangeUserInput struct {
	Name    *string  `mapstructure:"name"`
	Balance *float64 `mapstructure:"balance"`
}

// Empty reports whether no field is set.
func (in ChangeUserInput) Empty() bool { return in.Name == nil && in.Balance == nil }

type CreatePostInput struct {
	AuthorID string `mapstructure:"authorId"`
	Title    string `mapstructure:"title"`
	Content  string `mapstructure:"content"`
}

type ChangePostInput struct {
	Title   *string `mapstructure:"title"`
	Content *string `mapstructure:"content"`
}

func (in ChangePostInput) Empty() bool { return in.Title == nil && in.Content == nil }

type CreateProfileInput struct {
	UserID       string       `mapstructure:"userId"`
	IsMale       bool         `mapstructure:"isMale"`
	YearOfBirth  int          `mapstructure:"yearOfBirth"`
	MemberTypeID MemberTypeID `mapstructure:"memberTypeId"`
}

type ChangeProfileInput struct {
	IsMale       *bool         `mapstructure:"isMale"`
	YearOfBirth  *int          `mapstructure:"yearOfBirth"`
	MemberTypeID *MemberTypeID `mapstructure:"memberTypeId"`
}

func (in ChangeProfileInput) Empty() bool {
	return in.IsMale == nil && in.YearOfBirth == nil && in.MemberTypeID == nil
}
