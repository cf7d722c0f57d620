package sheets

import "context"

type unavailableRepository struct {
	err error
}

// NewUnavailable returns a Repository that fails every call with err. It lets the
// server start, and keep answering health checks, while the store is misconfigured.
func NewUnavailable(err error) Repository {
	return &unavailableRepository{err: err}
}

func (u *unavailableRepository) ReadTable(context.Context, Table) (*Sheet, error) {
	return nil, u.err
}

func (u *unavailableRepository) FindRow(context.Context, Table, Predicate) (Row, error) {
	return Row{}, u.err
}

func (u *unavailableRepository) UpdateCell(context.Context, RowRef, string, any) error {
	return u.err
}

func (u *unavailableRepository) AppendRow(context.Context, Table, map[string]any) error {
	return u.err
}

func (u *unavailableRepository) Worksheets(context.Context) ([]string, error) {
	return nil, u.err
}

func (u *unavailableRepository) Ping(context.Context) error {
	return u.err
}
