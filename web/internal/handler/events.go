package handler

import (
	"encoding/json"

	"github.com/Astemirdum/library-web/web/internal/model"
	"github.com/IBM/sarama"
)

const (
	actionLogin         = "user.login"
	actionSignup        = "user.signup"
	actionCreateBook    = "book.create"
	actionDeleteBook    = "book.delete"
	actionUpdateGeneral = "book.updateGeneral"
	actionAddCopy       = "copy.add"
	actionUpdateCopy    = "copy.update"
	actionDeleteCopy    = "copy.delete"
	actionBorrow        = "loan.borrow"
	actionReturn        = "loan.return"
)

type eventLog struct {
	producer sarama.AsyncProducer
	topic    string
}

// NewEventLog publishes UI events to topic. A nil producer discards them.
func NewEventLog(producer sarama.AsyncProducer, topic string) EventLog {
	if producer == nil {
		return nopEventLog{}
	}
	return &eventLog{
		producer: producer,
		topic:    topic,
	}
}

func (l *eventLog) Publish(ev model.UIEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	msg := &sarama.ProducerMessage{
		Topic: l.topic,
		Key:   sarama.StringEncoder(ev.Company),
		Value: sarama.ByteEncoder(data),
	}
	l.producer.Input() <- msg
	return nil
}

type nopEventLog struct{}

func (nopEventLog) Publish(model.UIEvent) error { return nil }
