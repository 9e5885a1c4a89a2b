// Package chinesecal derives the sexagenary year pillar of the Chinese
// calendar. The calendrical year begins at Li Chun, the instant the Sun
// reaches 315° tropical longitude, not at the lunar new year.
package chinesecal

import "time"

// Stems lists the ten heavenly stems in cycle order
var Stems = [10]string{"Jia", "Yi", "Bing", "Ding", "Wu", "Ji", "Geng", "Xin", "Ren", "Gui"}

// Branches lists the twelve earthly branches in cycle order
var Branches = [12]string{"Zi", "Chou", "Yin", "Mao", "Chen", "Si", "Wu", "Wei", "Shen", "You", "Xu", "Hai"}

// Animals maps each earthly branch to its zodiac animal
var Animals = [12]string{"Rat", "Ox", "Tiger", "Rabbit", "Dragon", "Snake", "Horse", "Goat", "Monkey", "Rooster", "Dog", "Pig"}

// StemElements maps each heavenly stem to its element
var StemElements = [10]string{"Wood", "Wood", "Fire", "Fire", "Earth", "Earth", "Metal", "Metal", "Water", "Water"}

// stemEpochOffset anchors the cycle so proleptic year 4 maps to the first
// stem/branch pair (Jia Zi). All reference data depends on this exact value.
const stemEpochOffset = 4

// LiChunTargetDeg is the solar longitude defining the year boundary
const LiChunTargetDeg = 315.0

// Pillar is a year's sexagenary designation
type Pillar struct {
	Year    int
	Stem    string
	Branch  string
	Animal  string
	Element string
	YinYang string
}

// YearPillar returns the pillar for a birth instant given the solved Li Chun
// boundary of the birth's calendar year. Births before the boundary belong
// to the previous calendrical year.
func YearPillar(birthUTC, boundaryUTC time.Time) Pillar {
	year := birthUTC.Year()
	if birthUTC.Before(boundaryUTC) {
		year--
	}
	return PillarForYear(year)
}

// PillarForYear returns the pillar designation of a calendrical year.
// Stem and branch indices are pure functions of the year.
func PillarForYear(year int) Pillar {
	stem := mod(year-stemEpochOffset, 10)
	branch := mod(year-stemEpochOffset, 12)

	yinYang := "Yang"
	if stem%2 == 1 {
		yinYang = "Yin"
	}

	return Pillar{
		Year:    year,
		Stem:    Stems[stem],
		Branch:  Branches[branch],
		Animal:  Animals[branch],
		Element: StemElements[stem],
		YinYang: yinYang,
	}
}

// LiChunWindowUTC returns the fixed search window known to contain exactly
// one 315° crossing for the given year: February 2 through February 6 UTC.
func LiChunWindowUTC(year int) (start, end time.Time) {
	return time.Date(year, 2, 2, 0, 0, 0, 0, time.UTC),
		time.Date(year, 2, 6, 0, 0, 0, 0, time.UTC)
}

// mod is a positive modulus, needed for proleptic years before the epoch
func mod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}
