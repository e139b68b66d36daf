package model

// TagSet 标签 ID 集合。资源与标签的多对多关系按集合语义操作，
// 避免散落在各处的数组查找/删除。
type TagSet map[uint]struct{}

// NewTagSet 从标签列表构建集合
func NewTagSet(tags []Tag) TagSet {
	s := make(TagSet, len(tags))
	for _, t := range tags {
		s[t.ID] = struct{}{}
	}
	return s
}

// TagSetOf 从 ID 列表构建集合
func TagSetOf(ids []uint) TagSet {
	s := make(TagSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add 加入标签
func (s TagSet) Add(id uint) {
	s[id] = struct{}{}
}

// Remove 移除标签
func (s TagSet) Remove(id uint) {
	delete(s, id)
}

// Contains 是否包含标签
func (s TagSet) Contains(id uint) bool {
	_, ok := s[id]
	return ok
}

// Len 集合大小
func (s TagSet) Len() int {
	return len(s)
}

// IntersectionSize 与另一集合的交集大小
func (s TagSet) IntersectionSize(other TagSet) int {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	n := 0
	for id := range small {
		if large.Contains(id) {
			n++
		}
	}
	return n
}

// IDs 导出为 ID 列表（顺序不保证）
func (s TagSet) IDs() []uint {
	ids := make([]uint, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	return ids
}
