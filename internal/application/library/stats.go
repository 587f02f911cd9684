package library

// Stats 馆藏统计，只读内存
type Stats struct {
	TotalMembers        int `json:"total_members"`
	ActiveMembers       int `json:"active_members"`
	TotalBooksInventory int `json:"total_books_inventory"`
	BorrowedBooks       int `json:"borrowed_books"`
	AvailableBooks      int `json:"available_books"`
	UniqueTitles        int `json:"unique_titles"`
}

// Stats 统计当前馆藏与会员
func (l *Library) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.statsLocked()
}

func (l *Library) statsLocked() Stats {
	s := Stats{
		TotalMembers: len(l.members),
		UniqueTitles: len(l.books),
	}
	for _, m := range l.members {
		if m.IsActive {
			s.ActiveMembers++
		}
	}
	for _, b := range l.books {
		a := b.Availability()
		s.TotalBooksInventory += a.Total
		s.BorrowedBooks += a.Borrowed
	}
	s.AvailableBooks = s.TotalBooksInventory - s.BorrowedBooks
	return s
}
