package bible

import "strings"

// CanonBook describes one book of the 66-book Protestant canon.
type CanonBook struct {
	Number   int
	OSIS     string
	Name     string
	Chapters int
	Aliases  []string
}

// Canon lists the books in canonical order. Book numbers match the numbering
// used by the corpus assets (Genesis = 1, Revelation = 66).
var Canon = []CanonBook{
	// Old Testament
	{1, "Gen", "Genesis", 50, []string{"ge", "gn"}},
	{2, "Exod", "Exodus", 40, []string{"ex", "exo"}},
	{3, "Lev", "Leviticus", 27, []string{"le", "lv"}},
	{4, "Num", "Numbers", 36, []string{"nu", "nm", "nb"}},
	{5, "Deut", "Deuteronomy", 34, []string{"dt", "deu"}},
	{6, "Josh", "Joshua", 24, []string{"jos", "jsh"}},
	{7, "Judg", "Judges", 21, []string{"jdg", "jg"}},
	{8, "Ruth", "Ruth", 4, []string{"rth", "ru"}},
	{9, "1Sam", "1 Samuel", 31, []string{"1sa", "1s"}},
	{10, "2Sam", "2 Samuel", 24, []string{"2sa", "2s"}},
	{11, "1Kgs", "1 Kings", 22, []string{"1ki", "1kin"}},
	{12, "2Kgs", "2 Kings", 25, []string{"2ki", "2kin"}},
	{13, "1Chr", "1 Chronicles", 29, []string{"1ch", "1chron"}},
	{14, "2Chr", "2 Chronicles", 36, []string{"2ch", "2chron"}},
	{15, "Ezra", "Ezra", 10, []string{"ezr"}},
	{16, "Neh", "Nehemiah", 13, []string{"ne"}},
	{17, "Esth", "Esther", 10, []string{"est", "es"}},
	{18, "Job", "Job", 42, []string{"jb"}},
	{19, "Ps", "Psalms", 150, []string{"psalm", "psa", "pss"}},
	{20, "Prov", "Proverbs", 31, []string{"pr", "prv"}},
	{21, "Eccl", "Ecclesiastes", 12, []string{"ecc", "qoh"}},
	{22, "Song", "Song of Solomon", 8, []string{"songofsongs", "sos", "canticles"}},
	{23, "Isa", "Isaiah", 66, []string{"is"}},
	{24, "Jer", "Jeremiah", 52, []string{"je", "jr"}},
	{25, "Lam", "Lamentations", 5, []string{"la"}},
	{26, "Ezek", "Ezekiel", 48, []string{"eze", "ezk"}},
	{27, "Dan", "Daniel", 12, []string{"da", "dn"}},
	{28, "Hos", "Hosea", 14, []string{"ho"}},
	{29, "Joel", "Joel", 3, []string{"jl"}},
	{30, "Amos", "Amos", 9, []string{"am"}},
	{31, "Obad", "Obadiah", 1, []string{"ob", "oba"}},
	{32, "Jonah", "Jonah", 4, []string{"jon", "jnh"}},
	{33, "Mic", "Micah", 7, []string{"mc"}},
	{34, "Nah", "Nahum", 3, []string{"na"}},
	{35, "Hab", "Habakkuk", 3, []string{"hb"}},
	{36, "Zeph", "Zephaniah", 3, []string{"zep", "zp"}},
	{37, "Hag", "Haggai", 2, []string{"hg"}},
	{38, "Zech", "Zechariah", 14, []string{"zec", "zc"}},
	{39, "Mal", "Malachi", 4, []string{"ml"}},
	// New Testament
	{40, "Matt", "Matthew", 28, []string{"mt", "mat"}},
	{41, "Mark", "Mark", 16, []string{"mk", "mrk", "mar"}},
	{42, "Luke", "Luke", 24, []string{"lk", "luk"}},
	{43, "John", "John", 21, []string{"jn", "jhn", "joh"}},
	{44, "Acts", "Acts", 28, []string{"ac", "act"}},
	{45, "Rom", "Romans", 16, []string{"ro", "rm"}},
	{46, "1Cor", "1 Corinthians", 16, []string{"1co"}},
	{47, "2Cor", "2 Corinthians", 13, []string{"2co"}},
	{48, "Gal", "Galatians", 6, []string{"ga"}},
	{49, "Eph", "Ephesians", 6, []string{"ephes"}},
	{50, "Phil", "Philippians", 4, []string{"php", "pp"}},
	{51, "Col", "Colossians", 4, []string{"co"}},
	{52, "1Thess", "1 Thessalonians", 5, []string{"1th", "1thes"}},
	{53, "2Thess", "2 Thessalonians", 3, []string{"2th", "2thes"}},
	{54, "1Tim", "1 Timothy", 6, []string{"1ti"}},
	{55, "2Tim", "2 Timothy", 4, []string{"2ti"}},
	{56, "Titus", "Titus", 3, []string{"tit"}},
	{57, "Phlm", "Philemon", 1, []string{"philem", "phm"}},
	{58, "Heb", "Hebrews", 13, []string{"he"}},
	{59, "Jas", "James", 5, []string{"jm", "jam"}},
	{60, "1Pet", "1 Peter", 5, []string{"1pe", "1pt"}},
	{61, "2Pet", "2 Peter", 3, []string{"2pe", "2pt"}},
	{62, "1John", "1 John", 5, []string{"1jn", "1jo", "1jhn"}},
	{63, "2John", "2 John", 1, []string{"2jn", "2jo", "2jhn"}},
	{64, "3John", "3 John", 1, []string{"3jn", "3jo", "3jhn"}},
	{65, "Jude", "Jude", 1, []string{"jud", "jd"}},
	{66, "Rev", "Revelation", 22, []string{"re", "rv", "apocalypse"}},
}

// canonIndex maps normalized names, OSIS IDs and aliases to Canon positions.
var canonIndex = func() map[string]int {
	idx := make(map[string]int, len(Canon)*4)
	for i, b := range Canon {
		idx[canonKey(b.OSIS)] = i
		idx[canonKey(b.Name)] = i
		for _, a := range b.Aliases {
			idx[canonKey(a)] = i
		}
	}
	return idx
}()

// canonKey lower-cases a book name and drops spaces and dots.
func canonKey(s string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(s) {
		if r == ' ' || r == '.' || r == '_' {
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// LookupBook resolves a book name, OSIS ID or common abbreviation.
func LookupBook(name string) (CanonBook, bool) {
	i, ok := canonIndex[canonKey(name)]
	if !ok {
		return CanonBook{}, false
	}
	return Canon[i], true
}

// CanonByNumber returns the canon entry for a book number.
func CanonByNumber(n int) (CanonBook, bool) {
	if n < 1 || n > len(Canon) {
		return CanonBook{}, false
	}
	return Canon[n-1], true
}
