package core

import "time"

// UserProfile 是用户画像的核心结构。
//
// 一句话定义：用户画像 = 偏好向量 + 内容亲和度 + 有界交互历史
//
// 设计要点：
//  维度              作用
//  Preferences       协同过滤相似度计算 / 内容打分（tag -> 累积权重，可为负）
//  ContentAffinity   用户对单个内容的累积信号（content -> 累积权重）
//  History           有界交互历史（最近 N 条，旧的先淘汰），驱动种子选取与已读过滤
//
// 生命周期：首次交互时懒创建；仅由 InteractionRecorder 写入；
// 引擎范围内从不删除（真正的删除属于上游身份服务）。
//
// 并发约定：ProfileStore 返回的画像是发布后的只读快照，调用方不得修改；
// 需要修改时走 Clone。
type UserProfile struct {
	UserID          string             `json:"user_id"`
	Preferences     map[string]float64 `json:"preferences"`
	ContentAffinity map[string]float64 `json:"content_affinity"`
	History         []*InteractionRecord `json:"history"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// NewUserProfile 创建一个空的用户画像。
func NewUserProfile(userID string) *UserProfile {
	return &UserProfile{
		UserID:          userID,
		Preferences:     make(map[string]float64),
		ContentAffinity: make(map[string]float64),
		History:         make([]*InteractionRecord, 0),
		UpdatedAt:       time.Now(),
	}
}

// Clone 深拷贝画像（History 记录本身不可变，可共享指针）。
func (p *UserProfile) Clone() *UserProfile {
	cp := &UserProfile{
		UserID:          p.UserID,
		Preferences:     make(map[string]float64, len(p.Preferences)),
		ContentAffinity: make(map[string]float64, len(p.ContentAffinity)),
		History:         make([]*InteractionRecord, len(p.History)),
		UpdatedAt:       p.UpdatedAt,
	}
	for k, v := range p.Preferences {
		cp.Preferences[k] = v
	}
	for k, v := range p.ContentAffinity {
		cp.ContentAffinity[k] = v
	}
	copy(cp.History, p.History)
	return cp
}

// AppendHistory 追加一条交互记录并截断到最近 maxSize 条（旧的先淘汰）。
func (p *UserProfile) AppendHistory(rec *InteractionRecord, maxSize int) {
	p.History = append(p.History, rec)
	if maxSize > 0 && len(p.History) > maxSize {
		p.History = p.History[len(p.History)-maxSize:]
	}
	p.UpdatedAt = rec.Timestamp
}

// PositiveCounts 统计正反馈交互次数（content -> count）。
// types 为空时使用 InteractionType.IsPositive 的默认判定。
func (p *UserProfile) PositiveCounts(types ...InteractionType) map[string]int {
	allowed := make(map[InteractionType]bool, len(types))
	for _, t := range types {
		allowed[t] = true
	}
	counts := make(map[string]int)
	for _, rec := range p.History {
		if len(types) > 0 {
			if !allowed[rec.Type] {
				continue
			}
		} else if !rec.Type.IsPositive() {
			continue
		}
		counts[rec.ContentID]++
	}
	return counts
}

// InteractedContent 返回用户有任意交互记录的内容集合（用于已读过滤，
// 基于完整历史而非仅正反馈）。
func (p *UserProfile) InteractedContent() map[string]bool {
	seen := make(map[string]bool, len(p.History))
	for _, rec := range p.History {
		seen[rec.ContentID] = true
	}
	return seen
}
