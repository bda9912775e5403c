// Package catalog holds the static catalog of supported competitive
// exams and their syllabi, embedded at build time.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed exams.json
var examsJSON []byte

// Category groups related exams, e.g. Civil Services or Engineering.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Exams []Exam `json:"exams"`
}

// Exam is one catalog entry with its full syllabus.
type Exam struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Papers      []Paper `json:"papers"`
}

// Paper is one paper or section of an exam syllabus.
type Paper struct {
	Name   string   `json:"name"`
	Topics []string `json:"topics"`
}

var (
	categories []Category
	examsByID  map[string]*Exam
)

func init() {
	if err := json.Unmarshal(examsJSON, &categories); err != nil {
		panic(fmt.Sprintf("catalog: parse exams.json: %v", err))
	}
	examsByID = make(map[string]*Exam)
	for ci := range categories {
		for ei := range categories[ci].Exams {
			e := &categories[ci].Exams[ei]
			examsByID[e.ID] = e
		}
	}
}

// Categories returns all exam categories in catalog order.
func Categories() []Category {
	return categories
}

// FindExam returns the catalog exam with the given id, or nil.
func FindExam(id string) *Exam {
	return examsByID[id]
}

// TopicID derives the stable progress-map key for a syllabus topic
// from its paper and topic positions, both zero-based.
func TopicID(paperIndex, topicIndex int) string {
	return fmt.Sprintf("P%d-t%d", paperIndex+1, topicIndex+1)
}

// TotalTopics returns the number of syllabus topics across all papers
// of an exam.
func (e *Exam) TotalTopics() int {
	total := 0
	for _, p := range e.Papers {
		total += len(p.Topics)
	}
	return total
}

// TopicByID resolves a progress-map key back to the topic text, or ""
// when the key does not name a topic of this exam.
func (e *Exam) TopicByID(id string) string {
	var paper, topic int
	if _, err := fmt.Sscanf(id, "P%d-t%d", &paper, &topic); err != nil {
		return ""
	}
	if paper < 1 || paper > len(e.Papers) {
		return ""
	}
	topics := e.Papers[paper-1].Topics
	if topic < 1 || topic > len(topics) {
		return ""
	}
	return topics[topic-1]
}
