package hittest

import "testing"

func TestFieldAt(t *testing.T) {
    b := Bounds{Width: 800, Height: 400}
    cases := []struct {
        p    Point
        want int
    }{
        {Point{0, 0}, 0},
        {Point{99.9, 49.9}, 0},
        {Point{100, 0}, 1},
        {Point{0, 50}, 8},
        {Point{799, 399}, 63},
        {Point{350, 175}, 27},
        // clamped
        {Point{-5, -5}, 0},
        {Point{800, 400}, 63},
        {Point{5000, 10}, 7},
        {Point{10, 5000}, 56},
    }
    for _, tc := range cases {
        if got := FieldAt(tc.p, b); got != tc.want { t.Fatalf("FieldAt(%v) = %d, want %d", tc.p, got, tc.want) }
    }
}

func TestFieldAtZeroBounds(t *testing.T) {
    if got := FieldAt(Point{10, 10}, Bounds{}); got != 0 { t.Fatalf("got %d", got) }
}

func TestContains(t *testing.T) {
    b := Bounds{Width: 80, Height: 80}
    if !Contains(Point{0, 0}, b) || !Contains(Point{79.5, 79.5}, b) { t.Fatalf("inside rejected") }
    if Contains(Point{80, 0}, b) || Contains(Point{-1, 3}, b) { t.Fatalf("outside accepted") }
}
