package engine

// CountMatched counts the matched tiles in a tile sequence
func CountMatched(tiles []Tile) int {
	count := 0
	for _, tile := range tiles {
		if tile.Matched {
			count++
		}
	}
	return count
}

// AllMatched reports whether every tile in the sequence is matched
func AllMatched(tiles []Tile) bool {
	for _, tile := range tiles {
		if !tile.Matched {
			return false
		}
	}
	return true
}

// PartnerOf returns the id of the other tile sharing tiles[id]'s image, or -1
func PartnerOf(tiles []Tile, id int) int {
	if id < 0 || id >= len(tiles) {
		return -1
	}
	for _, tile := range tiles {
		if tile.ID != id && tile.ImageID == tiles[id].ImageID {
			return tile.ID
		}
	}
	return -1
}

// ImageCounts returns how many tiles carry each image id
func ImageCounts(tiles []Tile) map[int]int {
	counts := make(map[int]int, len(tiles)/2)
	for _, tile := range tiles {
		counts[tile.ImageID]++
	}
	return counts
}
