package model

import "time"

// Orderはカートと確定済み注文を1つのエンティティで表す。
// completed=false がアクティブなカート（1ユーザーにつき1つ）
// completed=true が確定済み注文（以後は変更不可）
type Order struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"not null;index" json:"user_id"`
	Completed bool      `gorm:"not null;default:false;index" json:"completed"`
	Total     float64   `gorm:"type:decimal(10,2);not null" json:"total"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
