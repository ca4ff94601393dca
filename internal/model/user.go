// Package model はドメインモデルを定義する。
package model

// User はIdP（外部IDプロバイダー）が管理するユーザーを表す。
// 本システムは読み取り専用の外部状態として扱い、リクエストごとに
// ディレクトリAPI経由で取得・検証する。
type User struct {
	ID       string
	Username string
	Email    string
	Groups   []string
	Enabled  bool
	Status   string
}

// ロールを表すIdPグループ名
const (
	GroupAdmin  = "admin"
	GroupMember = "member"
)

// IsAdmin はユーザーがadminグループに所属しているかを返す。
func (u *User) IsAdmin() bool {
	for _, g := range u.Groups {
		if g == GroupAdmin {
			return true
		}
	}
	return false
}

// Principal は検証済みベアラートークンから抽出した認証主体を表す。
type Principal struct {
	UserID   string // トークンのsubクレーム
	Username string
	Groups   []string
}

// IsAdmin は認証主体がadminグループに所属しているかを返す。
func (p *Principal) IsAdmin() bool {
	for _, g := range p.Groups {
		if g == GroupAdmin {
			return true
		}
	}
	return false
}
