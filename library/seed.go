package library

// Seed loads the sample books and members every session starts with.
func Seed(c *Catalog) error {
	books := []*Book{
		NewBook("123456789", "Sample Book 1", "Author 1", "Fiction", 5),
		NewBook("987654321", "Sample Book 2", "Author 2", "Non-Fiction", 3),
	}
	for _, b := range books {
		if err := c.AddBook(b); err != nil {
			return err
		}
	}

	members := []*Member{
		{ID: 101, Name: "John Doe", Contact: "john@example.com"},
		{ID: 102, Name: "Jane Smith", Contact: "jane@example.com"},
	}
	for _, m := range members {
		if err := c.AddMember(m); err != nil {
			return err
		}
	}
	return nil
}
