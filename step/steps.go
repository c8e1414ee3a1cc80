package step

import (
	"context"
	"fmt"
	"strconv"

	"github.com/hawkline/mailflow/config"
	"github.com/hawkline/mailflow/engine"
	"github.com/hawkline/mailflow/lock"
	"github.com/hawkline/mailflow/logger"
	"github.com/hawkline/mailflow/message"
	"github.com/hawkline/mailflow/model"
	"github.com/hawkline/mailflow/rpc"
	"github.com/hawkline/mailflow/subscriber"
	"github.com/hawkline/mailflow/util"
	"go.uber.org/zap"
)

const METHOD_LIST_CREATE = "mailinglist.create"
const METHOD_LIST_IMPORT = "mailinglist.import"
const METHOD_CAMPAIGN_CREATE = "campaign.create"
const METHOD_CAMPAIGN_SEND = "campaign.send"
const METHOD_CAMPAIGN_REPORT = "campaign.report"

const MESSAGE_TYPE_EMAIL = "email"
const SEND_TYPE_HTML = "html"
const SEND_STATUS_ENABLED = "enabled"

// Container holds the collaborators the step handlers share. Handlers
// are pure transformations of (config, stash, rpc response) into a
// workflow outcome.
type Container struct {
	rpcClient rpc.Client
	conf      config.Config
	loader    *subscriber.Loader
	renderer  *message.Renderer
	runLock   *lock.FileLock
}

func NewContainer(rpcClient rpc.Client, conf config.Config, loader *subscriber.Loader, renderer *message.Renderer, runLock *lock.FileLock) *Container {
	return &Container{
		rpcClient: rpcClient,
		conf:      conf,
		loader:    loader,
		renderer:  renderer,
		runLock:   runLock,
	}
}

// Registry binds the five step names to their remote methods and
// handlers. The engine validates it once at construction.
func Registry(c *Container) []engine.Operation {
	return []engine.Operation{
		{Name: model.STEP_LIST_CREATE, RemoteMethod: METHOD_LIST_CREATE, Handler: c.ListCreate},
		{Name: model.STEP_LIST_IMPORT, RemoteMethod: METHOD_LIST_IMPORT, Handler: c.ListImport},
		{Name: model.STEP_CAMPAIGN_CREATE, RemoteMethod: METHOD_CAMPAIGN_CREATE, Handler: c.CampaignCreate},
		{Name: model.STEP_CAMPAIGN_SEND, RemoteMethod: METHOD_CAMPAIGN_SEND, Handler: c.CampaignSend},
		{Name: model.STEP_CAMPAIGN_REPORT, RemoteMethod: METHOD_CAMPAIGN_REPORT, Handler: c.CampaignReport},
	}
}

func missingConfig(key string) model.Outcome {
	return model.Fail(fmt.Sprintf("missing configuration %s", key))
}

// failDetail preserves the remote's answer verbatim for the operator.
func failDetail(resp *rpc.Response) any {
	if resp.Status == rpc.STATUS_ERROR {
		return resp.Message
	}
	if resp.Payload != nil {
		return resp.Payload
	}
	return string(resp.Status)
}

// ListCreate creates the mailing list, or detects that one with this
// identity already exists. Re-creation is idempotent: anything but a
// fresh numeric id reads as "list already present" and the workflow
// moves on with the stash unchanged.
func (c *Container) ListCreate(ctx context.Context, stash *model.Stash, remoteMethod string) model.Outcome {
	if c.conf.ListName == "" {
		return missingConfig("LIST_NAME")
	}
	resp, err := c.rpcClient.Call(ctx, remoteMethod, c.conf.ListName)
	if err != nil {
		return model.Fail(err.Error())
	}
	if resp.Status == rpc.STATUS_SUCCESS {
		if id, ok := util.PositiveInt(resp.Payload); ok {
			stash.MailingListID = id
			logger.Info("mailing list created", zap.Int64("mailingListId", id))
			return model.Continue(model.STEP_LIST_IMPORT)
		}
	}
	logger.Info("mailing list already present", zap.Int64("mailingListId", stash.MailingListID))
	return model.Continue(model.STEP_LIST_IMPORT)
}

// ListImport pushes the subscriber records to the list. The import
// response is not inspected; whatever went wrong surfaces in the next
// step's view of the list.
func (c *Container) ListImport(ctx context.Context, stash *model.Stash, remoteMethod string) model.Outcome {
	records, outcome := c.loadSubscribers(ctx)
	if outcome != nil {
		return *outcome
	}
	resp, err := c.rpcClient.Call(ctx, remoteMethod, stash.MailingListID, records)
	if err != nil {
		return model.Fail(err.Error())
	}
	logger.Info("subscribers imported", zap.Int64("mailingListId", stash.MailingListID),
		zap.Int("count", len(records)), zap.String("status", string(resp.Status)))
	return model.Continue(model.STEP_CAMPAIGN_CREATE)
}

// loadSubscribers reads the configured source. A configured file wins
// over a configured URL.
func (c *Container) loadSubscribers(ctx context.Context) ([]subscriber.Subscriber, *model.Outcome) {
	var records []subscriber.Subscriber
	var err error
	switch {
	case c.conf.SubscriberFile != "":
		records, err = c.loader.FromFile(c.conf.SubscriberFile)
	case c.conf.SubscriberURL != "":
		records, err = c.loader.FromURL(ctx, c.conf.SubscriberURL)
	default:
		outcome := missingConfig("SUBSCRIBER_FILE or SUBSCRIBER_URL")
		return nil, &outcome
	}
	if err != nil {
		outcome := model.Fail(err.Error())
		return nil, &outcome
	}
	return records, nil
}

// CampaignCreate registers the campaign and expects a numeric campaign
// id back. Textual fields are base64-encoded for the positional wire
// format before transmission.
func (c *Container) CampaignCreate(ctx context.Context, stash *model.Stash, remoteMethod string) model.Outcome {
	if c.conf.CampaignName == "" {
		return missingConfig("CAMPAIGN_NAME")
	}
	if c.conf.CampaignSubject == "" {
		return missingConfig("CAMPAIGN_SUBJECT")
	}
	if c.conf.AllowedSenderID == "" {
		return missingConfig("ALLOWED_SENDER_ID")
	}
	resp, err := c.rpcClient.Call(ctx, remoteMethod,
		util.EncodeField(c.conf.CampaignName),
		util.EncodeField(c.conf.CampaignSubject),
		util.EncodeField(c.conf.AllowedSenderID),
		util.EncodeField(MESSAGE_TYPE_EMAIL),
		util.EncodeField(SEND_TYPE_HTML),
		util.EncodeField(strconv.FormatInt(stash.MailingListID, 10)))
	if err != nil {
		return model.Fail(err.Error())
	}
	if resp.Status == rpc.STATUS_SUCCESS {
		if id, ok := util.PositiveInt(resp.Payload); ok {
			stash.CampaignID = id
			if err := c.runLock.RecordCampaign(id); err != nil {
				logger.Error("could not record campaign id in lock file", zap.Error(err))
			}
			logger.Info("campaign created", zap.Int64("campaignId", id))
			return model.Continue(model.STEP_CAMPAIGN_SEND)
		}
	}
	return model.Fail(failDetail(resp))
}

// CampaignSend renders the HTML body and triggers delivery to the
// configured recipient filter.
func (c *Container) CampaignSend(ctx context.Context, stash *model.Stash, remoteMethod string) model.Outcome {
	if c.conf.RecipientFilter == "" {
		return missingConfig("RECIPIENT_FILTER")
	}
	body, err := c.renderer.Render(message.Data{
		CampaignName: c.conf.CampaignName,
		Subject:      c.conf.CampaignSubject,
	})
	if err != nil {
		return model.Fail(err.Error())
	}
	resp, err := c.rpcClient.Call(ctx, remoteMethod,
		stash.MailingListID,
		stash.CampaignID,
		c.conf.RecipientFilter,
		c.conf.CampaignSubject,
		body,
		SEND_STATUS_ENABLED)
	if err != nil {
		return model.Fail(err.Error())
	}
	if resp.Status == rpc.STATUS_SUCCESS {
		if _, ok := resp.Payload.(map[string]any); ok {
			logger.Info("campaign sent", zap.Int64("campaignId", stash.CampaignID))
			return model.Complete()
		}
	}
	return model.Fail(failDetail(resp))
}

// CampaignReport fetches delivery results for the operator. This is
// the terminal step of the monitoring path selected via --start-step.
func (c *Container) CampaignReport(ctx context.Context, stash *model.Stash, remoteMethod string) model.Outcome {
	resp, err := c.rpcClient.Call(ctx, remoteMethod, stash.MailingListID)
	if err != nil {
		return model.Fail(err.Error())
	}
	logger.Info("campaign report", zap.Int64("mailingListId", stash.MailingListID),
		zap.String("status", string(resp.Status)), zap.Any("report", resp.Payload))
	return model.Complete()
}
