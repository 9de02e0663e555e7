package domain

type ListParams struct {
	Offset int
	Limit  int
	Q      string // 模糊搜索
}

func (p ListParams) Normalize() ListParams {
	if p.Limit <= 0 || p.Limit > 100 {
		p.Limit = 20
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// Models 迁移用
func Models() []any {
	return []any{
		&User{}, &Animal{}, &Adopter{}, &Adoption{},
		&VeterinaryRecord{}, &Volunteer{}, &Donation{},
	}
}
