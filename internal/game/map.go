package game

import (
	"fmt"

	"tankarena/server/internal/proto"
)

// DefaultMapName is used when a room does not pick a map.
const DefaultMapName = "bastion"

// MapByName returns a copy of the named map from the built-in catalog.
func MapByName(name string) (proto.MapData, error) {
	switch name {
	case "bastion":
		return mapBastion(), nil
	case "crossfire":
		return mapCrossfire(), nil
	default:
		return proto.MapData{}, fmt.Errorf("unknown map %q", name)
	}
}

// MapNames lists the catalog in presentation order.
func MapNames() []string {
	return []string{"bastion", "crossfire"}
}

func mapBastion() proto.MapData {
	return proto.MapData{
		Name:   "bastion",
		Width:  1600,
		Height: 900,
		Shapes: []proto.Shape{
			{Kind: proto.ShapeRect, X: 410, Y: 658, Width: 784, Height: 62},
			{Kind: proto.ShapeRect, X: 417, Y: 173, Width: 753, Height: 65},
			{Kind: proto.ShapeRect, X: 100, Y: 535, Width: 221, Height: 49},
			{Kind: proto.ShapeRect, X: 1326, Y: 527, Width: 211, Height: 43},
			{Kind: proto.ShapeCircle, X: 800, Y: 450, Radius: 90},
		},
		SpawnPoints: []proto.SpawnPoint{
			{Team: proto.TeamRed, X: 460, Y: 822},
			{Team: proto.TeamRed, X: 634, Y: 818},
			{Team: proto.TeamRed, X: 851, Y: 823},
			{Team: proto.TeamRed, X: 1095, Y: 823},
			{Team: proto.TeamBlue, X: 1061, Y: 77},
			{Team: proto.TeamBlue, X: 840, Y: 70},
			{Team: proto.TeamBlue, X: 666, Y: 74},
			{Team: proto.TeamBlue, X: 479, Y: 78},
		},
	}
}

func mapCrossfire() proto.MapData {
	return proto.MapData{
		Name:   "crossfire",
		Width:  1080,
		Height: 1080,
		Shapes: []proto.Shape{
			{Kind: proto.ShapeRect, X: 86, Y: 479, Width: 380, Height: 95},
			{Kind: proto.ShapeRect, X: 614, Y: 479, Width: 380, Height: 95},
			{Kind: proto.ShapeRect, X: 475, Y: 87, Width: 121, Height: 330},
			{Kind: proto.ShapeRect, X: 475, Y: 660, Width: 121, Height: 346},
			{Kind: proto.ShapeCircle, X: 540, Y: 540, Radius: 70},
		},
		SpawnPoints: []proto.SpawnPoint{
			{Team: proto.TeamRed, X: 792, Y: 407},
			{Team: proto.TeamRed, X: 790, Y: 235},
			{Team: proto.TeamRed, X: 845, Y: 691},
			{Team: proto.TeamBlue, X: 303, Y: 403},
			{Team: proto.TeamBlue, X: 299, Y: 627},
			{Team: proto.TeamBlue, X: 295, Y: 758},
		},
	}
}
