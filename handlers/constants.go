package handlers

// 埋め込みの色
const (
	ColorBlue  = 0x3498db // 保留中のオファー、移籍履歴
	ColorGreen = 0x2ecc71 // 受諾
	ColorRed   = 0xf04747 // 辞退
	ColorGray  = 0x99aab5 // 期限切れ・取り消し
	ColorTeal  = 0x58d68d // 選手プロフィール
	ColorGold  = 0xf1c40f // チーム情報、ロスター
)
