package models

import "strings"

// QuestionColumns is the width of a question log row:
// timestamp, requester id, display name, question, answer, delivered flag
const QuestionColumns = 6

// DeliveredSentinel marks a question row whose answer has been delivered
const DeliveredSentinel = "yes"

// QuestionRecord is one row of the external question log.
// RowIndex is the zero-based position within the log range and is the
// stable identity used to address the row for later updates.
type QuestionRecord struct {
	RowIndex             int    `json:"row_index"`
	Timestamp            string `json:"timestamp"`
	RequesterID          string `json:"requester_id"`
	RequesterDisplayName string `json:"requester_display_name"`
	QuestionText         string `json:"question_text"`
	AnswerText           string `json:"answer_text"`
	DeliveredFlag        string `json:"delivered_flag"`
}

// QuestionFromRow builds a QuestionRecord from a possibly short row,
// padding missing trailing cells with "".
func QuestionFromRow(rowIndex int, row []string) QuestionRecord {
	cells := make([]string, QuestionColumns)
	copy(cells, row)
	return QuestionRecord{
		RowIndex:             rowIndex,
		Timestamp:            cells[0],
		RequesterID:          cells[1],
		RequesterDisplayName: cells[2],
		QuestionText:         cells[3],
		AnswerText:           cells[4],
		DeliveredFlag:        cells[5],
	}
}

// Answered reports whether an operator has filled in the answer
func (q QuestionRecord) Answered() bool {
	return strings.TrimSpace(q.AnswerText) != ""
}

// Delivered reports whether the delivered flag carries the sentinel
func (q QuestionRecord) Delivered() bool {
	return strings.EqualFold(strings.TrimSpace(q.DeliveredFlag), DeliveredSentinel)
}

// AwaitingDelivery reports whether the row is answered but not yet sent
func (q QuestionRecord) AwaitingDelivery() bool {
	return q.Answered() && !q.Delivered()
}
