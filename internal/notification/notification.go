/*
Copyright 2024 Reversa Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package notification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/reversa-app/reversa/config"
)

// SlackNotification posts an error to the configured Slack webhook. It is
// best-effort: failures are logged, never propagated.
func SlackNotification(err error) {
	conf, configErr := config.Fetch()
	if configErr != nil || conf.Notification.Slack.WebhookUrl == "" {
		return
	}

	payload := map[string]interface{}{
		"blocks": []map[string]interface{}{
			{
				"type": "header",
				"text": map[string]interface{}{
					"type":  "plain_text",
					"text":  "Error From Reversa",
					"emoji": true,
				},
			},
			{
				"type": "section",
				"fields": []map[string]interface{}{
					{"type": "mrkdwn", "text": fmt.Sprintf("*Error:*\n%v", err)},
					{"type": "mrkdwn", "text": fmt.Sprintf("*Time:*\n%s", time.Now().Format(time.RFC1123))},
				},
			},
		},
	}

	body, marshalErr := json.Marshal(payload)
	if marshalErr != nil {
		logrus.Error(marshalErr)
		return
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, postErr := client.Post(conf.Notification.Slack.WebhookUrl, "application/json", bytes.NewReader(body))
	if postErr != nil {
		logrus.Error(postErr)
		return
	}
	defer resp.Body.Close()
}

// NotifyError reports an error through every configured channel and the log.
func NotifyError(err error) {
	logrus.Error(err)
	SlackNotification(err)
}
