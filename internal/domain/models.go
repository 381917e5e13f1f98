package domain

// Item represents a single sample file in the library index
type Item struct {
	ID   int64 // stable identifier assigned by the index
	Path string // path relative to the library root
	Name string
	Tags []string
}

// Library represents an opened sample library
type Library struct {
	Root   string // root directory of the library
	DBPath string // location of the SQLite index
	Name   string
}

// LibraryStatus represents the current state of the library backend
type LibraryStatus struct {
	Open      bool
	ItemCount int
	Scanning  bool
	Watching  bool
	Error     string // error message if the last operation failed
}
