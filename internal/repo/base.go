package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"animal-shelter/internal/domain"
)

// base 通用 CRUD；查不到返回 (nil, nil)，由 service 决定是否 404
type base[T any] struct {
	db      *gorm.DB
	order   string   // 列表排序
	search  []string // q 模糊匹配的列
	preload []string
}

func (b base[T]) Create(ctx context.Context, m *T) error {
	return b.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error
}

func (b base[T]) FindByID(ctx context.Context, id string) (*T, error) {
	var m T
	q := b.db.WithContext(ctx)
	for _, p := range b.preload {
		q = q.Preload(p)
	}
	err := q.First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// FindByIDForUpdate 事务内读并加行锁（SELECT ... FOR UPDATE），不预加载关联；
// sqlite 驱动忽略该子句，写事务本身已串行
func (b base[T]) FindByIDForUpdate(ctx context.Context, id string) (*T, error) {
	var m T
	err := b.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (b base[T]) List(ctx context.Context, p domain.ListParams) ([]T, int64, error) {
	return b.list(ctx, b.db, p)
}

func (b base[T]) list(ctx context.Context, db *gorm.DB, p domain.ListParams) ([]T, int64, error) {
	p = p.Normalize()
	q := db.WithContext(ctx).Model(new(T))
	if s := strings.TrimSpace(p.Q); s != "" && len(b.search) > 0 {
		like := "%" + s + "%"
		conds := make([]string, 0, len(b.search))
		args := make([]any, 0, len(b.search))
		for _, col := range b.search {
			conds = append(conds, col+" LIKE ?")
			args = append(args, like)
		}
		q = q.Where(strings.Join(conds, " OR "), args...)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	items := make([]T, 0)
	fq := q
	for _, pl := range b.preload {
		fq = fq.Preload(pl)
	}
	if err := fq.Order(b.order).Limit(p.Limit).Offset(p.Offset).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (b base[T]) Update(ctx context.Context, m *T) error {
	return b.db.WithContext(ctx).Omit(clause.Associations).Save(m).Error
}

// UpdateColumns 只写 cols 列（零值也写），其余列保持库里的当前值
func (b base[T]) UpdateColumns(ctx context.Context, m *T, cols ...string) error {
	if len(cols) == 0 {
		return nil
	}
	return b.db.WithContext(ctx).Model(m).Omit(clause.Associations).Select(cols).Updates(m).Error
}

// Delete 返回影响行数，0 表示不存在
func (b base[T]) Delete(ctx context.Context, id string) (int64, error) {
	res := b.db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	return res.RowsAffected, res.Error
}
